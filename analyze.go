package txbench

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Analysis summarizes the total lines of a detail log.
type Analysis struct {
	All     int
	Success int
	// Window is the span of the analyzed transactions, from the first
	// start to the last end after the warm-up is skipped.
	Window time.Duration

	AbortRate         Optional
	Throughput        Optional
	SuccessThroughput Optional

	// Latencies in microseconds.
	AverageLatency        Optional
	MedianLatency         Optional
	P99Latency            Optional
	SuccessAverageLatency Optional
	SuccessMedianLatency  Optional
	SuccessP99Latency     Optional
	FailureAverageLatency Optional
}

type totalLine struct {
	start   float64
	end     float64
	latency int64
	success bool
}

func parseTotalLine(fields []string) (*totalLine, bool, error) {
	if len(fields) < 6 || fields[1] != "total" {
		return nil, false, nil
	}
	if _, err := strconv.ParseUint(fields[0], 10, 64); err != nil {
		return nil, false, nil
	}
	start, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, false, err
	}
	end, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, false, err
	}
	latency, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, false, err
	}
	status, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, false, err
	}
	return &totalLine{start: start, end: end, latency: latency, success: status == 1}, true, nil
}

// AnalyzeDetail reads a detail log and summarizes its total lines. Lines
// that start within warmup of the first transaction are skipped. Summary
// and blank lines are ignored.
func AnalyzeDetail(r io.Reader, warmup time.Duration) (*Analysis, error) {
	scanner := bufio.NewScanner(r)
	first := -1.0
	lineNo := 0
	lines := make([]*totalLine, 0)
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || strings.HasPrefix(text, "#") {
			continue
		}
		l, ok, err := parseTotalLine(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}
		if first < 0 {
			first = l.start
		}
		if l.start < first+warmup.Seconds() {
			continue
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return analyze(lines), nil
}

func analyze(lines []*totalLine) *Analysis {
	all := make([]int64, 0, len(lines))
	success := make([]int64, 0, len(lines))
	failure := make([]int64, 0)
	start, end := 0.0, 0.0
	for i, l := range lines {
		if i == 0 || l.start < start {
			start = l.start
		}
		if i == 0 || l.end > end {
			end = l.end
		}
		all = append(all, l.latency)
		if l.success {
			success = append(success, l.latency)
		} else {
			failure = append(failure, l.latency)
		}
	}
	window := end - start
	a := &Analysis{
		All:                   len(all),
		Success:               len(success),
		Window:                time.Duration(window * float64(time.Second)),
		AbortRate:             ratio(float64(len(all)-len(success)), float64(len(all))),
		Throughput:            ratio(float64(len(all)), window),
		SuccessThroughput:     ratio(float64(len(success)), window),
		AverageLatency:        mean(all),
		SuccessAverageLatency: mean(success),
		FailureAverageLatency: mean(failure),
	}
	a.MedianLatency, a.P99Latency = percentiles(all)
	a.SuccessMedianLatency, a.SuccessP99Latency = percentiles(success)
	return a
}

func mean(values []int64) Optional {
	sum := int64(0)
	for _, v := range values {
		sum += v
	}
	return ratio(float64(sum), float64(len(values)))
}

// percentiles returns the median and the 99th percentile of values,
// picked by rank from the sorted values. values is sorted in place.
func percentiles(values []int64) (Optional, Optional) {
	n := len(values)
	if n == 0 {
		return Optional{}, Optional{}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return Defined(float64(values[n/2])), Defined(float64(values[n*99/100]))
}

func (self *Analysis) Write(w io.Writer) error {
	if self.All == 0 {
		_, err := fmt.Fprintln(w, "Zero completed transactions.")
		return err
	}
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "Transactions (All/Success): %d %d\n", self.All, self.Success)
	fmt.Fprintf(buf, "Abort Rate: %s\n", self.AbortRate)
	fmt.Fprintf(buf, "Throughput (All/Success): %s %s\n", self.Throughput, self.SuccessThroughput)
	fmt.Fprintf(buf, "Average Latency (all): %s\n", self.AverageLatency)
	fmt.Fprintf(buf, "Median Latency (all): %s\n", self.MedianLatency)
	fmt.Fprintf(buf, "99%%tile Latency (all): %s\n", self.P99Latency)
	fmt.Fprintf(buf, "Average Latency (success): %s\n", self.SuccessAverageLatency)
	fmt.Fprintf(buf, "Median Latency (success): %s\n", self.SuccessMedianLatency)
	fmt.Fprintf(buf, "99%%tile Latency (success): %s\n", self.SuccessP99Latency)
	if self.All > self.Success {
		fmt.Fprintf(buf, "Average Latency (failure): %s\n", self.FailureAverageLatency)
	}
	return buf.Flush()
}
