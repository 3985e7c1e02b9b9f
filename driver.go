package txbench

import (
	"time"

	g "github.com/hhkbp2/txbench/generator"
)

// DriverConfig holds the shape of the benchmark loop.
type DriverConfig struct {
	// Duration bounds the run. The check happens after each transaction,
	// so at least one transaction always runs.
	Duration time.Duration
	// TxnLen is the number of operations in every transaction.
	TxnLen int
	// WritePercent is the chance, out of 100, that an operation is a Put.
	WritePercent int
	// Payload builds the value written for a key. Nil writes the key itself.
	Payload func(key string) string
}

func (self *DriverConfig) Validate() error {
	if self.TxnLen <= 0 {
		return g.NewErrorf("transaction length must be positive, got %d", self.TxnLen)
	}
	if self.WritePercent < 0 || self.WritePercent > 100 {
		return g.NewErrorf("write percentage must be within [0, 100], got %d", self.WritePercent)
	}
	if self.Duration < 0 {
		return g.NewErrorf("duration must not be negative, got %s", self.Duration)
	}
	return nil
}

// Driver runs the closed benchmark loop: one transaction at a time, each
// made of TxnLen gets or puts on sampled keys, until Duration has elapsed.
// Commit failures are counted by the client and never retried.
type Driver struct {
	cfg     DriverConfig
	keys    []string
	sampler g.KeySampler
	client  TxnClient
	clock   Clock
	chooser *g.DiscreteGenerator
}

func NewDriver(
	cfg DriverConfig,
	keys []string,
	sampler g.KeySampler,
	client TxnClient,
	clock Clock,
	src g.RandomSource) (*Driver, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, g.NewErrorf("empty key corpus")
	}
	if sampler.Items() != int64(len(keys)) {
		return nil, g.NewErrorf("sampler draws from %d keys but the corpus has %d",
			sampler.Items(), len(keys))
	}
	if clock == nil {
		clock = SystemClock
	}
	if cfg.Payload == nil {
		cfg.Payload = func(key string) string {
			return key
		}
	}
	chooser := g.NewDiscreteGenerator(src)
	chooser.AddValue(float64(cfg.WritePercent), OpPut)
	chooser.AddValue(float64(100-cfg.WritePercent), OpGet)
	object := &Driver{
		cfg:     cfg,
		keys:    keys,
		sampler: sampler,
		client:  client,
		clock:   clock,
		chooser: chooser,
	}
	return object, nil
}

// Run executes transactions until the configured duration has elapsed and
// returns how many were run. It stops early only if Begin fails.
func (self *Driver) Run() (int, error) {
	start := self.clock.Now()
	count := 0
	for {
		if err := self.client.Begin(); err != nil {
			return count, err
		}
		for i := 0; i < self.cfg.TxnLen; i++ {
			key := self.keys[self.sampler.NextInt()]
			if self.chooser.NextString() == OpPut {
				status := self.client.Put(key, self.cfg.Payload(key))
				if status != StatusOK {
					Debugf("put %s: %s", key, status)
				}
			} else {
				_, status := self.client.Get(key)
				if status != StatusOK && status != StatusNotFound {
					Debugf("get %s: %s", key, status)
				}
			}
		}
		if !self.client.Commit() {
			Verbosef("transaction %d aborted", count+1)
		}
		count++
		if self.clock.Now().Sub(start) > self.cfg.Duration {
			break
		}
	}
	return count, nil
}
