package generator

import (
	"fmt"
)

// IntegerGenerator is a generator capable of generating integers and strings.
type IntegerGenerator interface {
	Generator
	// NextInt returns the next value as an int. When overriding this method,
	// be sure to call SetLastInt() properly, or the LastString() call
	// won't work.
	NextInt() int64
	LastInt() int64

	Mean() float64
}

// KeySampler picks key indices in [0, Items()) from a fixed-size key corpus.
type KeySampler interface {
	IntegerGenerator
	// Items returns the corpus size the sampler draws from.
	Items() int64
}

// IntegerGeneratorBase is a parent class for all IntegerGenerator subclasses.
type IntegerGeneratorBase struct {
	lastInt int64
}

func NewIntegerGeneratorBase(last int64) *IntegerGeneratorBase {
	return &IntegerGeneratorBase{
		lastInt: last,
	}
}

// SetLastInt sets the last value to be generated.
// IntegerGenerator subclasses must use this call to properly set the last
// int value, or the LastString() and LastInt() calls won't work.
func (self *IntegerGeneratorBase) SetLastInt(value int64) {
	self.lastInt = value
}

// NextString generates the next string in the distribution.
func (self *IntegerGeneratorBase) NextString(g IntegerGenerator) string {
	return fmt.Sprintf("%d", g.NextInt())
}

func (self *IntegerGeneratorBase) LastInt() int64 {
	return self.lastInt
}

func (self *IntegerGeneratorBase) LastString() string {
	return fmt.Sprintf("%d", self.LastInt())
}

func checkItems(items int64) error {
	if items <= 0 {
		return NewErrorf("key count must be positive, got %d", items)
	}
	return nil
}

// NewKeySampler returns a uniform sampler when alpha is negative and
// a zipfian sampler with the given shape parameter otherwise.
func NewKeySampler(items int64, alpha float64, src RandomSource) (KeySampler, error) {
	if alpha < 0 {
		g, err := NewUniformIntegerGenerator(items, src)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	g, err := NewZipfianGenerator(items, alpha, src)
	if err != nil {
		return nil, err
	}
	return g, nil
}
