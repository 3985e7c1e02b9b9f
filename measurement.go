package txbench

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	g "github.com/hhkbp2/txbench/generator"
)

type MeasurementType uint8

const (
	MeasurementHistogram MeasurementType = 1 + iota
	MeasurementHDRHistogram
	MeasurementHDRHistogramAndHistogram
)

// Used to export the collected measuremrnts into a usefull format, for example
// human readable text or machine readable JSON.
type MeasurementExporter interface {
	// Write a measurement to the exported format. v should be int64 or float64
	Write(metric string, measurement string, v interface{}) error
	io.Closer
}

type MakeMeasurementExporterFunc func(w io.WriteCloser) MeasurementExporter

var (
	MeasurementExporters map[string]MakeMeasurementExporterFunc
)

func init() {
	MeasurementExporters = map[string]MakeMeasurementExporterFunc{
		"TextMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewTextMeasurementExporter(w)
		},
		"JSONMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewJSONMeasurementExporter(w)
		},
		"JSONArrayMeasurementExporter": func(w io.WriteCloser) MeasurementExporter {
			return NewJSONArrayMeasurementExporter(w)
		},
	}
}

func NewMeasurementExporter(className string, w io.WriteCloser) (MeasurementExporter, error) {
	f, ok := MeasurementExporters[className]
	if !ok {
		return nil, g.NewErrorf("unsupported measurement exporter: %s", className)
	}
	return f(w), nil
}

// A single measured metric (such as COMMIT LATENCY)
type OneMeasurement interface {
	Measure(latency int64)
	GetName() string
	GetSummary() string
	// Report a return code.
	ReportStatus(status StatusType)
	// Exports the current measurements to a suitable format.
	ExportMeasurements(exporter MeasurementExporter) error
}

type OneMeasurementBase struct {
	Name            string
	MeasureLock     *sync.Mutex
	ReturnCodes     map[StatusType]uint32
	ReturnCodesLock *sync.Mutex
}

func NewOneMeasurementBase(name string) *OneMeasurementBase {
	return &OneMeasurementBase{
		Name:            name,
		MeasureLock:     &sync.Mutex{},
		ReturnCodes:     make(map[StatusType]uint32),
		ReturnCodesLock: &sync.Mutex{},
	}
}

func (self *OneMeasurementBase) GetName() string {
	return self.Name
}

func (self *OneMeasurementBase) ReportStatus(status StatusType) {
	self.ReturnCodesLock.Lock()
	defer self.ReturnCodesLock.Unlock()
	self.ReturnCodes[status]++
}

func (self *OneMeasurementBase) StatusCount(status StatusType) uint32 {
	self.ReturnCodesLock.Lock()
	defer self.ReturnCodesLock.Unlock()
	return self.ReturnCodes[status]
}

// ExportStatusCounts writes one line per return code, ordered by code.
func (self *OneMeasurementBase) ExportStatusCounts(exporter MeasurementExporter) error {
	self.ReturnCodesLock.Lock()
	statuses := make([]int, 0, len(self.ReturnCodes))
	counts := make(map[StatusType]uint32, len(self.ReturnCodes))
	for status, count := range self.ReturnCodes {
		statuses = append(statuses, int(status))
		counts[status] = count
	}
	self.ReturnCodesLock.Unlock()

	sort.Ints(statuses)
	for _, s := range statuses {
		status := StatusType(s)
		err := exporter.Write(self.GetName(), fmt.Sprintf("Return=%s", status), counts[status])
		if err != nil {
			return err
		}
	}
	return nil
}

// Collects latency measurements, and reports them when requested.
// Implementations must be safe for concurrent use: the status goroutine
// reads them while the driver records.
type Measurements interface {
	// Report a single value of a single metric. E.g. for commit latency,
	// operation="COMMIT" and latency is the measured value in microseconds.
	Measure(operation string, latency int64)

	// Return a one line summary of the measurements.
	GetSummary() string

	// Report a return code for a single DB operation.
	ReportStatus(operation string, status StatusType)

	// Export the current measurements to a suitable format.
	ExportMeasurements(exporter MeasurementExporter) error
}

type DefaultMeasurements struct {
	props              Properties
	measurementType    MeasurementType
	opToMeasurementMap map[string]OneMeasurement
	lock               *sync.RWMutex
}

func ParseMeasurementType(s string) (MeasurementType, error) {
	switch s {
	case "histogram":
		return MeasurementHistogram, nil
	case "hdrhistogram":
		return MeasurementHDRHistogram, nil
	case "hdrhistogram+histogram":
		return MeasurementHDRHistogramAndHistogram, nil
	default:
		return 0, g.NewErrorf("unknown %s=%s", PropertyMeasurementType, s)
	}
}

// NewMeasurements validates the measurement properties up front, so that
// constructing a measurement for a new operation later cannot fail.
func NewMeasurements(props Properties) (*DefaultMeasurements, error) {
	measurementType, err := ParseMeasurementType(
		props.GetDefault(PropertyMeasurementType, PropertyMeasurementTypeDefault))
	if err != nil {
		return nil, err
	}
	object := &DefaultMeasurements{
		props:              props,
		measurementType:    measurementType,
		opToMeasurementMap: make(map[string]OneMeasurement),
		lock:               &sync.RWMutex{},
	}
	if _, err := object.constructOneMeasurement("probe"); err != nil {
		return nil, err
	}
	return object, nil
}

func (self *DefaultMeasurements) constructOneMeasurement(name string) (OneMeasurement, error) {
	switch self.measurementType {
	case MeasurementHistogram:
		return NewOneMeasurementHistogram(name, self.props)
	case MeasurementHDRHistogram:
		return NewOneMeasurementHdrHistogram(name, self.props)
	case MeasurementHDRHistogramAndHistogram:
		hdr, err := NewOneMeasurementHdrHistogram("Hdr"+name, self.props)
		if err != nil {
			return nil, err
		}
		bucket, err := NewOneMeasurementHistogram("Bucket"+name, self.props)
		if err != nil {
			return nil, err
		}
		return NewTwoInOneMeasurement(name, hdr, bucket), nil
	default:
		panic("impossible to be here. Dead code reached. Bugs?")
	}
}

// Report a single value of a single metric. E.g. for commit latency,
// operation="COMMIT" and latency is the measured value.
func (self *DefaultMeasurements) Measure(operation string, latency int64) {
	self.getOpMeasurement(operation).Measure(latency)
}

func (self *DefaultMeasurements) ReportStatus(operation string, status StatusType) {
	self.getOpMeasurement(operation).ReportStatus(status)
}

// sorted returns the measurements ordered by operation name.
func (self *DefaultMeasurements) sorted() []OneMeasurement {
	self.lock.RLock()
	defer self.lock.RUnlock()
	names := make([]string, 0, len(self.opToMeasurementMap))
	for name := range self.opToMeasurementMap {
		names = append(names, name)
	}
	sort.Strings(names)
	ret := make([]OneMeasurement, 0, len(names))
	for _, name := range names {
		ret = append(ret, self.opToMeasurementMap[name])
	}
	return ret
}

func (self *DefaultMeasurements) GetSummary() string {
	parts := make([]string, 0)
	for _, m := range self.sorted() {
		if s := m.GetSummary(); len(s) > 0 {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (self *DefaultMeasurements) ExportMeasurements(exporter MeasurementExporter) error {
	for _, m := range self.sorted() {
		if err := m.ExportMeasurements(exporter); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the measurement of operation, or nil if nothing was
// recorded for it.
func (self *DefaultMeasurements) Get(operation string) OneMeasurement {
	self.lock.RLock()
	defer self.lock.RUnlock()
	return self.opToMeasurementMap[operation]
}

func (self *DefaultMeasurements) getOpMeasurement(operation string) OneMeasurement {
	self.lock.RLock()
	m, ok := self.opToMeasurementMap[operation]
	self.lock.RUnlock()
	if ok {
		return m
	}
	self.lock.Lock()
	defer self.lock.Unlock()
	if m, ok = self.opToMeasurementMap[operation]; ok {
		return m
	}
	m, err := self.constructOneMeasurement(operation)
	if err != nil {
		// the properties were checked by NewMeasurements
		panic(fmt.Sprintf("unexpected error: %s", err))
	}
	self.opToMeasurementMap[operation] = m
	return m
}

// Write human readable text. Tries to emulate the previous print report method.
type TextMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
}

func NewTextMeasurementExporter(w io.WriteCloser) *TextMeasurementExporter {
	return &TextMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
}

func (self *TextMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	_, err := fmt.Fprintf(self.buf, "[%s], %s, %v\n", metric, measurement, v)
	return err
}

func (self *TextMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

type innerJSONMeasurement struct {
	Metric      string      `json:"metric"`
	Measurement string      `json:"measurement"`
	Value       interface{} `json:"value"`
}

// Export measurements into a machine readable JSON file, one object per line.
type JSONMeasurementExporter struct {
	io.WriteCloser
	buf *bufio.Writer
}

func NewJSONMeasurementExporter(w io.WriteCloser) *JSONMeasurementExporter {
	return &JSONMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
	}
}

func (self *JSONMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	b, err := json.Marshal(&innerJSONMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	if err != nil {
		return err
	}
	if _, err = self.buf.Write(b); err != nil {
		return err
	}
	return self.buf.WriteByte('\n')
}

func (self *JSONMeasurementExporter) Close() error {
	err := self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

// Export measurements into a machine readable JSON Array of measurement objects.
type JSONArrayMeasurementExporter struct {
	io.WriteCloser
	buf        *bufio.Writer
	afterFirst bool
}

func NewJSONArrayMeasurementExporter(w io.WriteCloser) *JSONArrayMeasurementExporter {
	object := &JSONArrayMeasurementExporter{
		WriteCloser: w,
		buf:         bufio.NewWriter(w),
		afterFirst:  false,
	}
	object.buf.WriteString("[")
	return object
}

func (self *JSONArrayMeasurementExporter) Write(metric string, measurement string, v interface{}) error {
	b, err := json.Marshal(&innerJSONMeasurement{
		Metric:      metric,
		Measurement: measurement,
		Value:       v,
	})
	if err != nil {
		return err
	}
	if self.afterFirst {
		_, err = self.buf.WriteString(",")
		if err != nil {
			return err
		}
	} else {
		self.afterFirst = true
	}
	_, err = self.buf.Write(b)
	return err
}

func (self *JSONArrayMeasurementExporter) Close() error {
	_, err := self.buf.WriteString("]")
	if err != nil {
		return err
	}
	err = self.buf.Flush()
	err2 := self.WriteCloser.Close()
	if err != nil {
		return err
	}
	return err2
}

// Take measurements and maintain a histogram of a given metric, such as
// COMMIT LATENCY.
type OneMeasurementHistogram struct {
	*OneMeasurementBase
	// Specify the range of latencies to track in the histogram.
	buckets int64
	// Groups operations in discrete blocks of 1ms width.
	histogram []int64
	// Counts all operations outside the histogram's range.
	histogramOverflow int64
	// The total number of reported operations.
	operations int64
	// The sum of each latency measurement over all operations, in us.
	totalLatency int64
	// The sum of each latency measurement squared over all operations.
	// Used to calculate variance of latency.
	totalSquaredLatency float64
	// Keep a windowed version of these stats for printing status
	windowOperations   int64
	windowTotalLatency int64
	min                int64
	max                int64
}

func NewOneMeasurementHistogram(name string, props Properties) (*OneMeasurementHistogram, error) {
	buckets, err := strconv.ParseInt(props.GetDefault(Buckets, BucketsDefault), 0, 64)
	if err != nil {
		return nil, err
	}
	if buckets <= 0 {
		return nil, g.NewErrorf("%s must be positive, got %d", Buckets, buckets)
	}
	object := &OneMeasurementHistogram{
		OneMeasurementBase: NewOneMeasurementBase(name),
		buckets:            buckets,
		histogram:          make([]int64, buckets),
		min:                -1,
		max:                -1,
	}
	return object, nil
}

func (self *OneMeasurementHistogram) Measure(latency int64) {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()

	// latency reported in us and collected in buckets by ms.
	bucket := latency / 1000
	if bucket >= self.buckets {
		self.histogramOverflow++
	} else {
		self.histogram[bucket]++
	}
	self.operations++
	self.totalLatency += latency
	self.totalSquaredLatency += math.Pow(float64(latency), 2.0)
	self.windowOperations++
	self.windowTotalLatency += latency

	if (self.min < 0) || (latency < self.min) {
		self.min = latency
	}
	if (self.max < 0) || (latency > self.max) {
		self.max = latency
	}
}

func (self *OneMeasurementHistogram) GetSummary() string {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	if self.windowOperations == 0 {
		return ""
	}
	report := float64(self.windowTotalLatency) / float64(self.windowOperations)
	self.windowOperations = 0
	self.windowTotalLatency = 0
	return fmt.Sprintf("[%s AverageLatency(us)=%.2f]", self.GetName(), report)
}

func (self *OneMeasurementHistogram) ExportMeasurements(exporter MeasurementExporter) error {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()

	name := self.GetName()
	if err := exporter.Write(name, "Operations", self.operations); err != nil {
		return err
	}
	if self.operations > 0 {
		mean := float64(self.totalLatency) / float64(self.operations)
		variance := self.totalSquaredLatency/float64(self.operations) - math.Pow(mean, 2.0)
		lines := []struct {
			measurement string
			v           interface{}
		}{
			{"AverageLatency(us)", mean},
			{"LatencyVariance(us)", variance},
			{"MinLatency(us)", self.min},
			{"MaxLatency(us)", self.max},
		}
		for _, l := range lines {
			if err := exporter.Write(name, l.measurement, l.v); err != nil {
				return err
			}
		}
		opCounter := int64(0)
		done95th := false
		for i := int64(0); i < self.buckets; i++ {
			opCounter += self.histogram[i]
			percentage := float64(opCounter) / float64(self.operations)
			if (!done95th) && (percentage >= 0.95) {
				if err := exporter.Write(name, "95thPercentileLatency(us)", i*1000); err != nil {
					return err
				}
				done95th = true
			}
			if percentage >= 0.99 {
				if err := exporter.Write(name, "99thPercentileLatency(us)", i*1000); err != nil {
					return err
				}
				break
			}
		}
	}

	if err := self.ExportStatusCounts(exporter); err != nil {
		return err
	}
	for i := int64(0); i < self.buckets; i++ {
		if self.histogram[i] == 0 {
			continue
		}
		if err := exporter.Write(name, fmt.Sprintf("%d", i), self.histogram[i]); err != nil {
			return err
		}
	}
	return exporter.Write(name, fmt.Sprintf(">%d", self.buckets), self.histogramOverflow)
}

// Take measurements and maintain a HdrHistogram of a given metric, such as
// COMMIT LATENCY.
type OneMeasurementHdrHistogram struct {
	*OneMeasurementBase
	histogram   *hdrhistogram.Histogram
	max         int64
	percentiles []float64
}

// Helper function to parse the given percentile value string.
func parsePercentileValues(prop string) ([]float64, error) {
	parts := strings.Split(prop, ",")
	ret := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s %q: %w", PropertyPercentiles, prop, err)
		}
		if v <= 0 || v > 100 {
			return nil, g.NewErrorf("percentile out of range (0, 100]: %v", v)
		}
		ret = append(ret, v)
	}
	return ret, nil
}

func NewOneMeasurementHdrHistogram(name string, props Properties) (*OneMeasurementHdrHistogram, error) {
	percentiles, err := parsePercentileValues(
		props.GetDefault(PropertyPercentiles, PropertyPercentilesDefault))
	if err != nil {
		return nil, err
	}
	prop := props.GetDefault(PropertyHdrHistogramMax, PropertyHdrHistogramMaxDefault)
	max, err := strconv.ParseInt(prop, 0, 64)
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, g.NewErrorf("%s must be positive, got %d", PropertyHdrHistogramMax, max)
	}
	prop = props.GetDefault(PropertyHdrHistogramSig, PropertyHdrHistogramSigDefault)
	sig, err := strconv.ParseInt(prop, 0, 64)
	if err != nil {
		return nil, err
	}
	if sig < 1 || sig > 5 {
		return nil, g.NewErrorf("%s must be within [1, 5], got %d", PropertyHdrHistogramSig, sig)
	}
	object := &OneMeasurementHdrHistogram{
		OneMeasurementBase: NewOneMeasurementBase(name),
		histogram:          hdrhistogram.New(1, max, int(sig)),
		max:                max,
		percentiles:        percentiles,
	}
	return object, nil
}

// Latency is reported in micros. Values beyond hdrhistogram.max are
// recorded as the max.
func (self *OneMeasurementHdrHistogram) Measure(latency int64) {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()

	if latency > self.max {
		latency = self.max
	} else if latency < 0 {
		latency = 0
	}
	self.histogram.RecordValue(latency)
}

// This is called periodically from the status goroutine.
func (self *OneMeasurementHdrHistogram) GetSummary() string {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	if self.histogram.TotalCount() == 0 {
		return ""
	}
	format := "[%s: Count=%d, Max=%d, Min=%d, Avg=%.2f, 90=%d, 99=%d, 99.9=%d, 99.99=%d]"
	return fmt.Sprintf(format,
		self.GetName(),
		self.histogram.TotalCount(),
		self.histogram.Max(),
		self.histogram.Min(),
		self.histogram.Mean(),
		self.histogram.ValueAtQuantile(90),
		self.histogram.ValueAtQuantile(99),
		self.histogram.ValueAtQuantile(99.9),
		self.histogram.ValueAtQuantile(99.99))
}

// ValueAtPercentile returns the recorded value at percentile p in (0, 100].
func (self *OneMeasurementHdrHistogram) ValueAtPercentile(p float64) int64 {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	return self.histogram.ValueAtQuantile(p)
}

func (self *OneMeasurementHdrHistogram) TotalCount() int64 {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	return self.histogram.TotalCount()
}

var (
	Suffixes = []string{"th", "st", "nd", "rd", "th", "th", "th", "th", "th", "th"}
)

func ordinal(p float64) string {
	if p != math.Trunc(p) {
		return strconv.FormatFloat(p, 'f', -1, 64) + "th"
	}
	i := int64(p)
	switch i % 100 {
	case 11, 12, 13:
		return fmt.Sprintf("%dth", i)
	default:
		return fmt.Sprintf("%d%s", i, Suffixes[i%10])
	}
}

// This is called from the main goroutine, on orderly termination.
func (self *OneMeasurementHdrHistogram) ExportMeasurements(exporter MeasurementExporter) error {
	self.MeasureLock.Lock()
	name := self.GetName()
	type line struct {
		measurement string
		v           interface{}
	}
	lines := []line{
		{"Operations", self.histogram.TotalCount()},
		{"AverageLatency(us)", self.histogram.Mean()},
		{"MinLatency(us)", self.histogram.Min()},
		{"MaxLatency(us)", self.histogram.Max()},
	}
	for _, p := range self.percentiles {
		lines = append(lines, line{
			ordinal(p) + "PercentileLatency(us)",
			self.histogram.ValueAtQuantile(p),
		})
	}
	self.MeasureLock.Unlock()

	for _, l := range lines {
		if err := exporter.Write(name, l.measurement, l.v); err != nil {
			return err
		}
	}
	return self.ExportStatusCounts(exporter)
}

// Delegates to 2 measurement instances.
type TwoInOneMeasurement struct {
	*OneMeasurementBase
	thing1 OneMeasurement
	thing2 OneMeasurement
}

func NewTwoInOneMeasurement(name string, thing1, thing2 OneMeasurement) *TwoInOneMeasurement {
	return &TwoInOneMeasurement{
		OneMeasurementBase: NewOneMeasurementBase(name),
		thing1:             thing1,
		thing2:             thing2,
	}
}

func (self *TwoInOneMeasurement) Measure(latency int64) {
	self.thing1.Measure(latency)
	self.thing2.Measure(latency)
}

func (self *TwoInOneMeasurement) ReportStatus(status StatusType) {
	self.thing1.ReportStatus(status)
	self.thing2.ReportStatus(status)
}

func (self *TwoInOneMeasurement) GetSummary() string {
	return strings.TrimSpace(self.thing1.GetSummary() + " " + self.thing2.GetSummary())
}

func (self *TwoInOneMeasurement) ExportMeasurements(exporter MeasurementExporter) error {
	if err := self.thing1.ExportMeasurements(exporter); err != nil {
		return err
	}
	return self.thing2.ExportMeasurements(exporter)
}
