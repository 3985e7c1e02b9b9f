package txbench

import (
	"strconv"
	"testing"
	"time"

	g "github.com/hhkbp2/txbench/generator"
	"github.com/stretchr/testify/require"
)

func makeKeys(n int) []string {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, "key"+strconv.Itoa(i))
	}
	return keys
}

type driverFixture struct {
	clock  *fakeClock
	inner  *fakeClient
	client *MeasureClient
	driver *Driver
}

func newDriverFixture(t *testing.T, cfg DriverConfig, keys []string) *driverFixture {
	clock := newFakeClock()
	inner := newFakeClient(clock, time.Millisecond)
	client := NewMeasureClient(inner, cfg.TxnLen, clock, nil)
	sampler, err := g.NewUniformIntegerGenerator(int64(len(keys)), g.NewRandom(7))
	require.Nil(t, err)
	driver, err := NewDriver(cfg, keys, sampler, client, clock, g.NewRandom(11))
	require.Nil(t, err)
	return &driverFixture{
		clock:  clock,
		inner:  inner,
		client: client,
		driver: driver,
	}
}

func TestDriverZeroDurationRunsOneTransaction(t *testing.T) {
	f := newDriverFixture(t, DriverConfig{TxnLen: 3, WritePercent: 0}, makeKeys(10))
	n, err := f.driver.Run()
	require.Nil(t, err)
	require.Equal(t, 1, n)
	log := f.client.Log()
	require.Equal(t, 1, len(log))
	require.Equal(t, 3, len(log[0].Gets))
	require.Equal(t, 0, len(log[0].Puts))
	require.Equal(t, 3, len(f.inner.gets))
}

func TestDriverStopsAfterDuration(t *testing.T) {
	// each transaction takes begin + 2 ops + commit = 4ms
	cfg := DriverConfig{Duration: 10 * time.Millisecond, TxnLen: 2, WritePercent: 50}
	f := newDriverFixture(t, cfg, makeKeys(10))
	n, err := f.driver.Run()
	require.Nil(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, len(f.client.Log()))
}

func TestDriverAllWrites(t *testing.T) {
	cfg := DriverConfig{Duration: 20 * time.Millisecond, TxnLen: 4, WritePercent: 100}
	f := newDriverFixture(t, cfg, makeKeys(10))
	n, err := f.driver.Run()
	require.Nil(t, err)
	require.Equal(t, 0, len(f.inner.gets))
	require.Equal(t, 4*n, len(f.inner.putKeys))
	// the payload defaults to the key
	for k, v := range f.inner.puts {
		require.Equal(t, k, v)
	}
}

func TestDriverAllReads(t *testing.T) {
	cfg := DriverConfig{Duration: 20 * time.Millisecond, TxnLen: 4, WritePercent: 0}
	f := newDriverFixture(t, cfg, makeKeys(10))
	n, err := f.driver.Run()
	require.Nil(t, err)
	require.Equal(t, 0, len(f.inner.putKeys))
	require.Equal(t, 4*n, len(f.inner.gets))
}

func TestDriverMixedOperations(t *testing.T) {
	cfg := DriverConfig{Duration: time.Second, TxnLen: 10, WritePercent: 50}
	f := newDriverFixture(t, cfg, makeKeys(10))
	_, err := f.driver.Run()
	require.Nil(t, err)
	require.True(t, len(f.inner.gets) > 0)
	require.True(t, len(f.inner.putKeys) > 0)
}

func TestDriverSingleKeyCorpus(t *testing.T) {
	cfg := DriverConfig{Duration: 20 * time.Millisecond, TxnLen: 3, WritePercent: 50}
	f := newDriverFixture(t, cfg, []string{"only"})
	_, err := f.driver.Run()
	require.Nil(t, err)
	for _, k := range append(f.inner.gets, f.inner.putKeys...) {
		require.Equal(t, "only", k)
	}
}

func TestDriverUsesPayload(t *testing.T) {
	cfg := DriverConfig{
		TxnLen:       3,
		WritePercent: 100,
		Payload: func(key string) string {
			return "v-" + key
		},
	}
	f := newDriverFixture(t, cfg, makeKeys(3))
	_, err := f.driver.Run()
	require.Nil(t, err)
	for k, v := range f.inner.puts {
		require.Equal(t, "v-"+k, v)
	}
}

func TestDriverIgnoresFailedCommits(t *testing.T) {
	cfg := DriverConfig{Duration: 10 * time.Millisecond, TxnLen: 2, WritePercent: 50}
	f := newDriverFixture(t, cfg, makeKeys(10))
	f.inner.commits = []bool{false, true, false}
	n, err := f.driver.Run()
	require.Nil(t, err)
	require.Equal(t, 3, n)
	// no retries: one commit per transaction
	commits := 0
	for _, c := range f.inner.calls {
		if c == "commit" {
			commits++
		}
	}
	require.Equal(t, 3, commits)
	count, _ := f.client.Successes()
	require.Equal(t, int64(1), count)
}

func TestDriverStopsOnBeginError(t *testing.T) {
	cfg := DriverConfig{Duration: time.Second, TxnLen: 2, WritePercent: 50}
	f := newDriverFixture(t, cfg, makeKeys(10))
	f.inner.failBeginAt = 3
	n, err := f.driver.Run()
	require.Equal(t, errFakeBegin, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, len(f.client.Log()))
}

func TestNewDriverValidates(t *testing.T) {
	keys := makeKeys(4)
	sampler, err := g.NewUniformIntegerGenerator(4, g.NewRandom(1))
	require.Nil(t, err)
	client := newFakeClient(newFakeClock(), 0)
	bad := []DriverConfig{
		{TxnLen: 0, WritePercent: 50},
		{TxnLen: 1, WritePercent: -1},
		{TxnLen: 1, WritePercent: 101},
		{TxnLen: 1, WritePercent: 50, Duration: -time.Second},
	}
	for _, cfg := range bad {
		_, err := NewDriver(cfg, keys, sampler, client, nil, g.NewRandom(1))
		require.NotNil(t, err, "%+v", cfg)
	}
	cfg := DriverConfig{TxnLen: 1, WritePercent: 50}
	_, err = NewDriver(cfg, makeKeys(5), sampler, client, nil, g.NewRandom(1))
	require.NotNil(t, err)
	_, err = NewDriver(cfg, keys, sampler, client, nil, g.NewRandom(1))
	require.Nil(t, err)
}
