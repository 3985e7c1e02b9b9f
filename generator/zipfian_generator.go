package generator

import (
	"math"
)

// ZipfianGenerator draws items from [0, items) so that item k-1 has a
// weight proportional to 1/k^alpha; item 0 is the most popular, item 1
// the second most popular, and so on.
//
// Sampling is done by inverse transform over a cumulative distribution
// table, built on the first draw and owned by this generator.
type ZipfianGenerator struct {
	*IntegerGeneratorBase
	items  int64
	alpha  float64
	random RandomSource
	// cumulative distribution, nil until the first draw
	table []float64
}

func NewZipfianGenerator(items int64, alpha float64, src RandomSource) (*ZipfianGenerator, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}
	if alpha < 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, NewErrorf("invalid zipfian constant: %g", alpha)
	}
	return &ZipfianGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		items:                items,
		alpha:                alpha,
		random:               src,
	}, nil
}

// buildTable computes table[i-1] = sum_{j<=i} c / j^alpha, where
// c normalizes the weights to sum to one.
func buildTable(items int64, alpha float64) []float64 {
	var sum float64
	for i := int64(1); i <= items; i++ {
		sum += 1.0 / math.Pow(float64(i), alpha)
	}
	c := 1.0 / sum
	table := make([]float64, items)
	var acc float64
	for i := int64(1); i <= items; i++ {
		acc += c / math.Pow(float64(i), alpha)
		table[i-1] = acc
	}
	return table
}

func (self *ZipfianGenerator) ensureTable() {
	if self.table == nil {
		self.table = buildTable(self.items, self.alpha)
	}
}

// search returns the smallest index whose cumulative value is >= r.
// Rounding can leave the last entry a hair below 1, so a draw above it
// maps to the last item.
func (self *ZipfianGenerator) search(r float64) int64 {
	l, h := int64(0), self.items-1
	for l < h {
		mid := l + (h-l)/2
		if self.table[mid] >= r {
			h = mid
		} else {
			l = mid + 1
		}
	}
	return l
}

func (self *ZipfianGenerator) NextInt() int64 {
	if self.items == 1 {
		self.SetLastInt(0)
		return 0
	}
	self.ensureTable()
	ret := self.search(NextOpenFloat64(self.random))
	self.SetLastInt(ret)
	return ret
}

func (self *ZipfianGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

// Mean returns the expected item index under this distribution.
func (self *ZipfianGenerator) Mean() float64 {
	self.ensureTable()
	var mean, prev float64
	for i, v := range self.table {
		mean += float64(i) * (v - prev)
		prev = v
	}
	return mean
}

func (self *ZipfianGenerator) Items() int64 {
	return self.items
}

func (self *ZipfianGenerator) Alpha() float64 {
	return self.alpha
}

// Table returns a copy of the cumulative distribution table.
func (self *ZipfianGenerator) Table() []float64 {
	self.ensureTable()
	ret := make([]float64, len(self.table))
	copy(ret, self.table)
	return ret
}
