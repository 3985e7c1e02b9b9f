package generator

type Pair struct {
	Weight float64
	Value  string
}

// DiscreteGenerator picks one of a fixed set of values with probability
// proportional to its weight. Values with a zero weight are never picked.
type DiscreteGenerator struct {
	values    []*Pair
	sum       float64
	src       RandomSource
	lastValue string
}

func NewDiscreteGenerator(src RandomSource) *DiscreteGenerator {
	return &DiscreteGenerator{
		values:    make([]*Pair, 0),
		src:       src,
		lastValue: "",
	}
}

// AddValue registers value with the given weight. Non-positive weights are
// dropped.
func (self *DiscreteGenerator) AddValue(weight float64, value string) {
	if weight <= 0 {
		return
	}
	self.values = append(self.values, &Pair{
		Weight: weight,
		Value:  value,
	})
	self.sum += weight
}

// NextString returns "" when no value carries a positive weight.
func (self *DiscreteGenerator) NextString() string {
	if len(self.values) == 0 {
		return ""
	}
	value := self.src.Float64() * self.sum
	var cumulative float64
	for _, p := range self.values {
		cumulative += p.Weight
		if value < cumulative {
			self.lastValue = p.Value
			return p.Value
		}
	}
	// float rounding can leave value just past the last boundary
	self.lastValue = self.values[len(self.values)-1].Value
	return self.lastValue
}

func (self *DiscreteGenerator) LastString() string {
	if len(self.lastValue) == 0 {
		self.lastValue = self.NextString()
	}
	return self.lastValue
}
