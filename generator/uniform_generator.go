package generator

// UniformIntegerGenerator generates integers uniformly from [0, items).
type UniformIntegerGenerator struct {
	*IntegerGeneratorBase
	items  int64
	random RandomSource
}

func NewUniformIntegerGenerator(items int64, src RandomSource) (*UniformIntegerGenerator, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}
	return &UniformIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		items:                items,
		random:               src,
	}, nil
}

func (self *UniformIntegerGenerator) NextInt() int64 {
	var ret int64
	if self.items > 1 {
		ret = self.random.Int63n(self.items)
	}
	self.SetLastInt(ret)
	return ret
}

func (self *UniformIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *UniformIntegerGenerator) Mean() float64 {
	return float64(self.items-1) / 2.0
}

func (self *UniformIntegerGenerator) Items() int64 {
	return self.items
}
