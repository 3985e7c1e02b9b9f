package txbench

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Optional is a float that may be undefined, e.g. an average over zero
// samples. It prints as "undefined" rather than NaN.
type Optional struct {
	Valid bool
	Value float64
}

func Defined(v float64) Optional {
	return Optional{Valid: true, Value: v}
}

// ratio returns n/d, undefined when d is zero.
func ratio(n, d float64) Optional {
	if d == 0 {
		return Optional{}
	}
	return Defined(n / d)
}

func (self Optional) String() string {
	if !self.Valid {
		return "undefined"
	}
	return strconv.FormatFloat(self.Value, 'f', 6, 64)
}

func microseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

type OpSummary struct {
	Count int64
	// Average latency in microseconds.
	Average Optional
}

func summarizeOp(t OpCounter) OpSummary {
	return OpSummary{
		Count:   t.Count,
		Average: ratio(microseconds(t.Latency), float64(t.Count)),
	}
}

// Summary is the end-of-run aggregate over one client's transaction log.
type Summary struct {
	Attempts  int64
	Successes int64
	// CommitRatio is Successes/Attempts.
	CommitRatio Optional
	// AverageLatency is the mean total latency of committed transactions,
	// in microseconds.
	AverageLatency Optional
	Begin          OpSummary
	Get            OpSummary
	Put            OpSummary
	Commit         OpSummary
}

// TxnRecorder is what the reporter reads from an instrumented client.
type TxnRecorder interface {
	Log() []*TxnStat
	Totals() RunningTotals
	Successes() (int64, time.Duration)
}

func Summarize(r TxnRecorder) Summary {
	attempts := int64(len(r.Log()))
	successes, latency := r.Successes()
	totals := r.Totals()
	return Summary{
		Attempts:       attempts,
		Successes:      successes,
		CommitRatio:    ratio(float64(successes), float64(attempts)),
		AverageLatency: ratio(microseconds(latency), float64(successes)),
		Begin:          summarizeOp(totals.Begin),
		Get:            summarizeOp(totals.Get),
		Put:            summarizeOp(totals.Put),
		Commit:         summarizeOp(totals.Commit),
	}
}

// WriteParams writes the '#' header line naming the run parameters.
func WriteParams(w io.Writer, cfg DriverConfig) error {
	_, err := fmt.Fprintf(w, "# txbench_params: %ds, txnlen=%d, writepercent=%d\n",
		int64(cfg.Duration/time.Second), cfg.TxnLen, cfg.WritePercent)
	return err
}

func WriteSummary(w io.Writer, s Summary) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "# Commit_Ratio: %s\n", s.CommitRatio)
	fmt.Fprintf(buf, "# Average_Latency: %s\n", s.AverageLatency)
	for _, op := range []struct {
		label string
		s     OpSummary
	}{
		{"Begin", s.Begin},
		{"Get", s.Get},
		{"Put", s.Put},
		{"Commit", s.Commit},
	} {
		fmt.Fprintf(buf, "# %s: %d, %s\n", op.label, op.s.Count, op.s.Average)
	}
	return buf.Flush()
}

// FormatTimestamp renders t as seconds since the epoch with a six digit
// microsecond fraction.
func FormatTimestamp(t time.Time) string {
	us := t.UnixNano() / int64(time.Microsecond)
	sec, frac := us/1000000, us%1000000
	if frac < 0 {
		sec--
		frac += 1000000
	}
	return fmt.Sprintf("%d.%06d", sec, frac)
}

func writeDetailLine(w io.Writer, i int, label string, start, end time.Time, latency time.Duration, success bool) {
	status := 0
	if success {
		status = 1
	}
	fmt.Fprintf(w, "%d %s %s %s %d %d\n",
		i, label, FormatTimestamp(start), FormatTimestamp(end), DurationToMicrosecond(latency), status)
}

// WriteDetail writes one line per operation of every transaction in log,
// numbered from 1: begin, the puts, the gets, commit and a synthesized
// total line spanning from the end of begin to the end of the
// transaction. Aborted transactions have no commit line.
func WriteDetail(w io.Writer, log []*TxnStat) error {
	buf := bufio.NewWriter(w)
	for n, stat := range log {
		i := n + 1
		writeDetailLine(buf, i, "begin", stat.Begin.Start, stat.Begin.End, stat.Begin.Latency, stat.Success)
		for _, op := range stat.Puts {
			writeDetailLine(buf, i, "put", op.Start, op.End, op.Latency, stat.Success)
		}
		for _, op := range stat.Gets {
			writeDetailLine(buf, i, "get", op.Start, op.End, op.Latency, stat.Success)
		}
		if !stat.Aborted {
			writeDetailLine(buf, i, "commit", stat.Commit.Start, stat.Commit.End, stat.Commit.Latency, stat.Success)
		}
		writeDetailLine(buf, i, "total", stat.Begin.End, stat.End(), stat.TotalLatency, stat.Success)
	}
	return buf.Flush()
}
