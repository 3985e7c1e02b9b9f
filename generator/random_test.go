package generator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed values, for exercising edge draws.
type scriptedSource struct {
	floats []float64
	ints   []int64
	drawn  int
}

func (self *scriptedSource) Float64() float64 {
	v := self.floats[0]
	self.floats = self.floats[1:]
	self.drawn++
	return v
}

func (self *scriptedSource) Int63n(n int64) int64 {
	v := self.ints[0] % n
	self.ints = self.ints[1:]
	self.drawn++
	return v
}

func TestNextOpenFloat64RejectsBounds(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.0, 1.0, 0.0, 0.25}}
	require.Equal(t, 0.25, NextOpenFloat64(src))
	require.Equal(t, 4, src.drawn)
}

func TestNewRandomIsDeterministic(t *testing.T) {
	r1 := NewRandom(42)
	r2 := NewRandom(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, r1.Int63n(1000), r2.Int63n(1000))
	}
}
