package txbench

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusReporter prints the windowed measurement summary every interval
// while a run is in progress.
type StatusReporter struct {
	w            io.Writer
	interval     time.Duration
	measurements Measurements
	clock        Clock

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewStatusReporter(w io.Writer, interval time.Duration, m Measurements, clock Clock) *StatusReporter {
	if clock == nil {
		clock = SystemClock
	}
	return &StatusReporter{
		w:            w,
		interval:     interval,
		measurements: m,
		clock:        clock,
		stopCh:       make(chan struct{}),
	}
}

func (self *StatusReporter) Start() {
	start := self.clock.Now()
	self.wg.Add(1)
	go func() {
		defer self.wg.Done()
		ticker := time.NewTicker(self.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				self.report(start)
			case <-self.stopCh:
				return
			}
		}
	}()
}

func (self *StatusReporter) report(start time.Time) {
	elapsed := self.clock.Now().Sub(start)
	fmt.Fprintf(self.w, "%d sec: %s\n", int64(elapsed/time.Second), self.measurements.GetSummary())
}

// Stop stops the goroutine and waits for it to exit. It prints nothing
// more after it returns.
func (self *StatusReporter) Stop() {
	close(self.stopCh)
	self.wg.Wait()
}
