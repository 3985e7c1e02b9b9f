package generator

import (
	"errors"
	"fmt"
)

// Generator is an expression that generates a sequence of string values,
// following some distribution(Uniform, Zipfian, etc.)
type Generator interface {
	// NextString generates the next string in the distribution.
	NextString() string
	// LastString returns the previous string generated by the distribution;
	// e.g., returned from the last NextString() call.
	// Calling LastString() should not advance the distribution or have any
	// side effects. If NextString() has not yet been called, LastString()
	// should return something reasonable.
	LastString() string
}

func NewErrorf(format string, args ...interface{}) error {
	return errors.New(fmt.Sprintf(format, args...))
}
