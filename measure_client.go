package txbench

import (
	"time"
)

// Names of the measured operations, as reported to Measurements.
const (
	OpBegin  = "BEGIN"
	OpGet    = "GET"
	OpPut    = "PUT"
	OpCommit = "COMMIT"
	OpAbort  = "ABORT"
	OpTotal  = "TOTAL"
)

// OpStat is the timing of a single call into the wrapped client.
type OpStat struct {
	Start   time.Time
	End     time.Time
	Latency time.Duration
}

func (self *OpStat) finish(end time.Time) {
	self.End = end
	self.Latency = end.Sub(self.Start)
	if self.Latency < 0 {
		self.Latency = 0
	}
}

// TxnStat records one transaction: its begin, every put and get in the
// order they were issued, and how it ended.
type TxnStat struct {
	Begin  OpStat
	Puts   []OpStat
	Gets   []OpStat
	Commit OpStat
	// Abort is set instead of Commit when the transaction was aborted.
	Abort   OpStat
	Aborted bool
	Success bool
	// TotalLatency spans from the end of Begin to the end of Commit
	// (or Abort).
	TotalLatency time.Duration
}

// End returns the time the transaction was closed.
func (self *TxnStat) End() time.Time {
	if self.Aborted {
		return self.Abort.End
	}
	return self.Commit.End
}

// OpCounter is the running count and latency sum of one operation kind.
type OpCounter struct {
	Count   int64
	Latency time.Duration
}

func (self *OpCounter) add(latency time.Duration) {
	self.Count++
	self.Latency += latency
}

type RunningTotals struct {
	Begin  OpCounter
	Get    OpCounter
	Put    OpCounter
	Commit OpCounter
}

// MeasureClient wraps a TxnClient and times every call made through it.
// It passes results through untouched; the only calls it refuses are the
// ones that break the one-open-transaction contract.
//
// A MeasureClient is not safe for concurrent use. Run one per driver.
type MeasureClient struct {
	client       TxnClient
	txnLen       int
	clock        Clock
	measurements Measurements

	stats   []*TxnStat
	current *TxnStat
	totals  RunningTotals

	successCount   int64
	successLatency time.Duration
}

func NewMeasureClient(client TxnClient, txnLen int, clock Clock, m Measurements) *MeasureClient {
	if clock == nil {
		clock = SystemClock
	}
	if txnLen < 0 {
		txnLen = 0
	}
	return &MeasureClient{
		client:       client,
		txnLen:       txnLen,
		clock:        clock,
		measurements: m,
	}
}

func (self *MeasureClient) SetProperties(p Properties) {
	self.client.SetProperties(p)
}

func (self *MeasureClient) GetProperties() Properties {
	return self.client.GetProperties()
}

func (self *MeasureClient) Init() error {
	return self.client.Init()
}

func (self *MeasureClient) Cleanup() error {
	return self.client.Cleanup()
}

func (self *MeasureClient) measure(op string, latency time.Duration) {
	if self.measurements != nil {
		self.measurements.Measure(op, DurationToMicrosecond(latency))
	}
}

func (self *MeasureClient) report(op string, status StatusType) {
	if self.measurements != nil {
		self.measurements.ReportStatus(op, status)
	}
}

func (self *MeasureClient) Begin() error {
	if self.current != nil {
		return ErrTxnAlreadyOpen
	}
	stat := &TxnStat{
		Puts: make([]OpStat, 0, self.txnLen),
		Gets: make([]OpStat, 0, self.txnLen),
	}
	op := &stat.Begin
	op.Start = self.clock.Now()
	err := self.client.Begin()
	op.finish(self.clock.Now())
	if err != nil {
		self.report(OpBegin, StatusError)
		return err
	}
	self.current = stat
	self.totals.Begin.add(op.Latency)
	self.measure(OpBegin, op.Latency)
	self.report(OpBegin, StatusOK)
	return nil
}

func (self *MeasureClient) Get(key string) (string, StatusType) {
	if self.current == nil {
		return "", StatusBadRequest
	}
	var op OpStat
	op.Start = self.clock.Now()
	value, status := self.client.Get(key)
	op.finish(self.clock.Now())
	self.current.Gets = append(self.current.Gets, op)
	self.totals.Get.add(op.Latency)
	self.measure(OpGet, op.Latency)
	self.report(OpGet, status)
	return value, status
}

func (self *MeasureClient) Put(key string, value string) StatusType {
	if self.current == nil {
		return StatusBadRequest
	}
	var op OpStat
	op.Start = self.clock.Now()
	status := self.client.Put(key, value)
	op.finish(self.clock.Now())
	self.current.Puts = append(self.current.Puts, op)
	self.totals.Put.add(op.Latency)
	self.measure(OpPut, op.Latency)
	self.report(OpPut, status)
	return status
}

// Commit commits the open transaction. With no open transaction it
// returns false without reaching the wrapped client.
func (self *MeasureClient) Commit() bool {
	stat := self.current
	if stat == nil {
		Debugf("commit: %s", ErrNoOpenTxn)
		return false
	}
	op := &stat.Commit
	op.Start = self.clock.Now()
	ok := self.client.Commit()
	op.finish(self.clock.Now())

	stat.Success = ok
	stat.TotalLatency = op.End.Sub(stat.Begin.End)
	self.totals.Commit.add(op.Latency)
	self.measure(OpCommit, op.Latency)
	if ok {
		self.successCount++
		self.successLatency += stat.TotalLatency
		self.measure(OpTotal, stat.TotalLatency)
		self.report(OpCommit, StatusOK)
	} else {
		self.report(OpCommit, StatusError)
	}
	self.seal()
	return ok
}

func (self *MeasureClient) Abort() {
	stat := self.current
	if stat == nil {
		self.client.Abort()
		return
	}
	op := &stat.Abort
	op.Start = self.clock.Now()
	self.client.Abort()
	op.finish(self.clock.Now())
	stat.Aborted = true
	stat.Success = false
	stat.TotalLatency = op.End.Sub(stat.Begin.End)
	self.report(OpAbort, StatusOK)
	self.seal()
}

func (self *MeasureClient) seal() {
	self.stats = append(self.stats, self.current)
	self.current = nil
}

// InTxn reports whether a transaction is open.
func (self *MeasureClient) InTxn() bool {
	return self.current != nil
}

// Log returns the closed transactions in the order they were begun.
// The records must not be modified.
func (self *MeasureClient) Log() []*TxnStat {
	return self.stats
}

func (self *MeasureClient) Totals() RunningTotals {
	return self.totals
}

// Successes returns the number of committed transactions and the sum of
// their total latencies.
func (self *MeasureClient) Successes() (int64, time.Duration) {
	return self.successCount, self.successLatency
}
