package generator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformIntegerGenerator(t *testing.T) {
	for _, items := range []int64{1, 2, 10, 1000} {
		var g KeySampler
		uig, err := NewUniformIntegerGenerator(items, NewRandom(1))
		require.Nil(t, err)
		g = uig
		require.Equal(t, items, g.Items())
		total := 1000
		for i := 0; i < total; i++ {
			last := g.NextInt()
			require.True(t, last >= 0 && last < items)
			require.Equal(t, last, g.LastInt())
			str := g.NextString()
			v, err := strconv.ParseInt(str, 0, 64)
			require.Nil(t, err)
			require.True(t, v >= 0 && v < items)
		}
		require.Equal(t, float64(items-1)/2.0, g.Mean())
	}
}

func TestUniformIntegerGeneratorSingleItem(t *testing.T) {
	g, err := NewUniformIntegerGenerator(1, NewRandom(7))
	require.Nil(t, err)
	for i := 0; i < 100; i++ {
		require.Equal(t, int64(0), g.NextInt())
	}
}

func TestUniformIntegerGeneratorRejectsEmptyCorpus(t *testing.T) {
	_, err := NewUniformIntegerGenerator(0, NewRandom(1))
	require.NotNil(t, err)
	_, err = NewUniformIntegerGenerator(-3, NewRandom(1))
	require.NotNil(t, err)
}
