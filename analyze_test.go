package txbench

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleDetail = `# txbench_params: 3s, txnlen=1, writepercent=0
# Commit_Ratio: 0.750000
1 begin 10.000000 10.000100 100 1
1 get 10.000100 10.000200 100 1
1 commit 10.000200 10.000300 100 1
1 total 10.000100 10.000300 200 1
2 total 11.000000 11.000400 400 0
3 total 12.000000 12.000100 100 1
4 total 13.000000 13.000300 300 1

not a detail line
`

func TestAnalyzeDetail(t *testing.T) {
	a, err := AnalyzeDetail(strings.NewReader(sampleDetail), 0)
	require.Nil(t, err)
	require.Equal(t, 4, a.All)
	require.Equal(t, 3, a.Success)
	require.Equal(t, Defined(0.25), a.AbortRate)
	require.Equal(t, Defined(250), a.AverageLatency)
	// sorted latencies 100 200 300 400
	require.Equal(t, Defined(300), a.MedianLatency)
	require.Equal(t, Defined(400), a.P99Latency)
	require.Equal(t, Defined(200), a.SuccessAverageLatency)
	require.Equal(t, Defined(200), a.SuccessMedianLatency)
	require.Equal(t, Defined(400), a.FailureAverageLatency)
	require.InDelta(t, 3.0002, a.Window.Seconds(), 1e-6)
	require.InDelta(t, 4/3.0002, a.Throughput.Value, 1e-6)
}

func TestAnalyzeDetailSkipsWarmup(t *testing.T) {
	a, err := AnalyzeDetail(strings.NewReader(sampleDetail), 1500*time.Millisecond)
	require.Nil(t, err)
	require.Equal(t, 2, a.All)
	require.Equal(t, 2, a.Success)
	require.Equal(t, Defined(0), a.AbortRate)
	require.False(t, a.FailureAverageLatency.Valid)
}

func TestAnalyzeDetailEmpty(t *testing.T) {
	a, err := AnalyzeDetail(strings.NewReader("# Commit_Ratio: undefined\n"), 0)
	require.Nil(t, err)
	require.Equal(t, 0, a.All)
	require.False(t, a.AbortRate.Valid)
	require.False(t, a.Throughput.Valid)
	var buf bytes.Buffer
	require.Nil(t, a.Write(&buf))
	require.Equal(t, "Zero completed transactions.\n", buf.String())
}

func TestAnalyzeDetailBadLine(t *testing.T) {
	_, err := AnalyzeDetail(strings.NewReader("1 total 10.0 x 100 1\n"), 0)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "line 1")
}

func TestAnalyzeDetailReadsWrittenLog(t *testing.T) {
	cfg := DriverConfig{Duration: 40 * time.Millisecond, TxnLen: 2, WritePercent: 50}
	f := newDriverFixture(t, cfg, makeKeys(8))
	f.inner.commits = []bool{true, false}
	n, err := f.driver.Run()
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, WriteSummary(&buf, Summarize(f.client)))
	require.Nil(t, WriteDetail(&buf, f.client.Log()))
	a, err := AnalyzeDetail(&buf, 0)
	require.Nil(t, err)
	require.Equal(t, n, a.All)
	require.Equal(t, n-1, a.Success)
	require.Equal(t, Defined(3000), a.AverageLatency)

	var out bytes.Buffer
	require.Nil(t, a.Write(&out))
	require.Contains(t, out.String(), "Abort Rate: ")
	require.Contains(t, out.String(), "Average Latency (failure): 3000.000000")
}
