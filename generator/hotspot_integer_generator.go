package generator

// HotspotIntegerGenerator generates integers from [0, items) resembling
// a hotspot distribution where hotOpnFraction of the draws go to
// a hot set made of the first hotsetFraction of the items.
type HotspotIntegerGenerator struct {
	*IntegerGeneratorBase
	items          int64
	hotInterval    int64
	coldInterval   int64
	hotsetFraction float64
	hotOpnFraction float64
	random         RandomSource
}

func checkFraction(value float64) float64 {
	if value < 0.0 || value > 1.0 {
		// Hotset fraction out of range
		value = 0.0
	}
	return value
}

func NewHotspotIntegerGenerator(
	items int64, hotsetFraction, hotOpnFraction float64,
	src RandomSource) (*HotspotIntegerGenerator, error) {

	if err := checkItems(items); err != nil {
		return nil, err
	}
	// check whether hostset fraction is out of range
	hotsetFraction = checkFraction(hotsetFraction)
	// check whether hot operation fraction is out of range
	hotOpnFraction = checkFraction(hotOpnFraction)
	hotInterval := int64(float64(items) * hotsetFraction)
	object := &HotspotIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		items:                items,
		hotInterval:          hotInterval,
		coldInterval:         items - hotInterval,
		hotsetFraction:       hotsetFraction,
		hotOpnFraction:       hotOpnFraction,
		random:               src,
	}
	return object, nil
}

func (self *HotspotIntegerGenerator) pick(lower, interval int64) int64 {
	if interval <= 1 {
		return lower
	}
	return lower + self.random.Int63n(interval)
}

func (self *HotspotIntegerGenerator) NextInt() int64 {
	var value int64
	hot := self.random.Float64() < self.hotOpnFraction
	if (hot && self.hotInterval > 0) || self.coldInterval == 0 {
		// Choose a value from the hot set.
		value = self.pick(0, self.hotInterval)
	} else {
		// Choose a value from the cold set.
		value = self.pick(self.hotInterval, self.coldInterval)
	}
	self.SetLastInt(value)
	return value
}

func (self *HotspotIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *HotspotIntegerGenerator) Mean() float64 {
	hotMean := float64(self.hotInterval-1) / 2.0
	coldMean := float64(self.hotInterval) + float64(self.coldInterval-1)/2.0
	if self.hotInterval == 0 {
		return coldMean
	}
	if self.coldInterval == 0 {
		return hotMean
	}
	return self.hotOpnFraction*hotMean + (1-self.hotOpnFraction)*coldMean
}

func (self *HotspotIntegerGenerator) Items() int64 {
	return self.items
}

func (self *HotspotIntegerGenerator) GetHotsetFraction() float64 {
	return self.hotsetFraction
}

func (self *HotspotIntegerGenerator) GetHotOpnFraction() float64 {
	return self.hotOpnFraction
}
