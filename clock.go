package txbench

import (
	"time"
)

// Clock is the time source for every timestamp the benchmark records.
// Readings from SystemClock carry Go's monotonic clock reading, so
// differences between them never go backwards even if the wall clock
// is adjusted during a run.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

var SystemClock Clock = systemClock{}
