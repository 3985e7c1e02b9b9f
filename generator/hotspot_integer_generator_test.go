package generator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotspotIntegerGenerator(t *testing.T) {
	items := int64(1000)
	hotsetFraction := float64(0.2)
	hotOpnFraction := float64(1.0)
	var g KeySampler
	hig, err := NewHotspotIntegerGenerator(items, hotsetFraction, hotOpnFraction, NewRandom(1))
	require.Nil(t, err)
	g = hig
	hotsetHigh := int64(float64(items) * hotsetFraction)
	for i := 0; i < 100; i++ {
		last := g.NextInt()
		require.True(t, last >= 0 && last < hotsetHigh)
		require.Equal(t, last, g.LastInt())
		str := g.NextString()
		v, err := strconv.ParseInt(str, 0, 64)
		require.Nil(t, err)
		require.True(t, v < hotsetHigh)
		require.Equal(t, str, g.LastString())
	}
}

func TestHotspotIntegerGeneratorColdSet(t *testing.T) {
	items := int64(100)
	hig, err := NewHotspotIntegerGenerator(items, 0.1, 0.0, NewRandom(2))
	require.Nil(t, err)
	for i := 0; i < 100; i++ {
		v := hig.NextInt()
		require.True(t, v >= 10 && v < items)
	}
}

func TestHotspotIntegerGeneratorSingleItem(t *testing.T) {
	hig, err := NewHotspotIntegerGenerator(1, 0.2, 0.8, NewRandom(3))
	require.Nil(t, err)
	for i := 0; i < 50; i++ {
		require.Equal(t, int64(0), hig.NextInt())
	}
}
