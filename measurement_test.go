package txbench

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// closeRecorder is a buffer that remembers being closed.
type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (self *closeRecorder) Close() error {
	self.closed = true
	return nil
}

func TestTextMeasurementExporter(t *testing.T) {
	w := &closeRecorder{}
	e, err := NewMeasurementExporter("TextMeasurementExporter", w)
	require.Nil(t, err)
	require.Nil(t, e.Write("COMMIT", "Operations", int64(3)))
	require.Nil(t, e.Write("COMMIT", "AverageLatency(us)", 1.5))
	require.Nil(t, e.Close())
	require.True(t, w.closed)
	require.Equal(t, "[COMMIT], Operations, 3\n[COMMIT], AverageLatency(us), 1.5\n", w.String())
}

func TestJSONMeasurementExporter(t *testing.T) {
	w := &closeRecorder{}
	e := NewJSONMeasurementExporter(w)
	require.Nil(t, e.Write("GET", "Operations", 2))
	require.Nil(t, e.Write("PUT", "Operations", 1))
	require.Nil(t, e.Close())
	require.True(t, w.closed)
	expected := `{"metric":"GET","measurement":"Operations","value":2}
{"metric":"PUT","measurement":"Operations","value":1}
`
	require.Equal(t, expected, w.String())
}

func TestJSONArrayMeasurementExporter(t *testing.T) {
	w := &closeRecorder{}
	e := NewJSONArrayMeasurementExporter(w)
	require.Nil(t, e.Write("GET", "Operations", 2))
	require.Nil(t, e.Write("PUT", "Operations", 1))
	require.Nil(t, e.Close())
	require.True(t, w.closed)
	expected := `[{"metric":"GET","measurement":"Operations","value":2},` +
		`{"metric":"PUT","measurement":"Operations","value":1}]`
	require.Equal(t, expected, w.String())
}

func TestUnknownMeasurementExporter(t *testing.T) {
	_, err := NewMeasurementExporter("XMLMeasurementExporter", &closeRecorder{})
	require.NotNil(t, err)
}

func TestNewMeasurementsRejectsBadProperties(t *testing.T) {
	for k, v := range map[string]string{
		PropertyMeasurementType: "timeseries",
		PropertyPercentiles:     "50,abc",
		PropertyHdrHistogramSig: "9",
		PropertyHdrHistogramMax: "0",
	} {
		p := NewProperties()
		p.Add(k, v)
		_, err := NewMeasurements(p)
		require.NotNil(t, err, "%s=%s", k, v)
	}
	p := NewProperties()
	p.Add(PropertyMeasurementType, "histogram")
	p.Add(Buckets, "-1")
	_, err := NewMeasurements(p)
	require.NotNil(t, err)
}

func TestHdrHistogramMeasurementExport(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyPercentiles, "50,99,99.9")
	m, err := NewMeasurements(p)
	require.Nil(t, err)
	for i := int64(1); i <= 100; i++ {
		m.Measure(OpCommit, i)
	}
	m.ReportStatus(OpCommit, StatusOK)
	m.ReportStatus(OpCommit, StatusError)
	m.ReportStatus(OpCommit, StatusOK)
	m.Measure(OpBegin, 7)

	w := &closeRecorder{}
	e := NewTextMeasurementExporter(w)
	require.Nil(t, m.ExportMeasurements(e))
	require.Nil(t, e.Close())
	out := w.String()
	// operations are exported in name order
	require.True(t, strings.Index(out, "[BEGIN]") < strings.Index(out, "[COMMIT]"))
	require.Contains(t, out, "[COMMIT], Operations, 100\n")
	require.Contains(t, out, "[COMMIT], MinLatency(us), 1\n")
	require.Contains(t, out, "[COMMIT], MaxLatency(us), 100\n")
	require.Contains(t, out, "[COMMIT], 50thPercentileLatency(us), 50\n")
	require.Contains(t, out, "[COMMIT], 99thPercentileLatency(us), 99\n")
	require.Contains(t, out, "[COMMIT], 99.9thPercentileLatency(us), 100\n")
	require.Contains(t, out, "[COMMIT], Return=OK, 2\n[COMMIT], Return=ERROR, 1\n")

	commit := m.Get(OpCommit).(*OneMeasurementHdrHistogram)
	require.Equal(t, int64(50), commit.ValueAtPercentile(50))
	require.Nil(t, m.Get("SCAN"))
}

func TestHdrHistogramClampsToMax(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyHdrHistogramMax, "1000")
	m, err := NewOneMeasurementHdrHistogram("PUT", p)
	require.Nil(t, err)
	m.Measure(5000)
	m.Measure(-3)
	require.Equal(t, int64(2), m.TotalCount())
}

func TestHistogramMeasurement(t *testing.T) {
	p := NewProperties()
	p.Add(Buckets, "10")
	m, err := NewOneMeasurementHistogram("GET", p)
	require.Nil(t, err)
	require.Equal(t, "", m.GetSummary())
	m.Measure(500)
	m.Measure(1500)
	m.Measure(20000)
	require.Equal(t, "[GET AverageLatency(us)=7333.33]", m.GetSummary())
	require.Equal(t, "", m.GetSummary())

	w := &closeRecorder{}
	e := NewTextMeasurementExporter(w)
	require.Nil(t, m.ExportMeasurements(e))
	require.Nil(t, e.Close())
	out := w.String()
	require.Contains(t, out, "[GET], Operations, 3\n")
	require.Contains(t, out, "[GET], 0, 1\n[GET], 1, 1\n")
	require.Contains(t, out, "[GET], >10, 1\n")
}

func TestMeasurementsSummary(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyMeasurementType, "hdrhistogram+histogram")
	m, err := NewMeasurements(p)
	require.Nil(t, err)
	require.Equal(t, "", m.GetSummary())
	m.Measure(OpGet, 10)
	s := m.GetSummary()
	require.Contains(t, s, "[HdrGET: Count=1")
	require.Contains(t, s, "[BucketGET AverageLatency(us)=10.00]")
}

func TestOrdinal(t *testing.T) {
	require.Equal(t, "1st", ordinal(1))
	require.Equal(t, "11th", ordinal(11))
	require.Equal(t, "22nd", ordinal(22))
	require.Equal(t, "95th", ordinal(95))
	require.Equal(t, "99.9th", ordinal(99.9))
}
