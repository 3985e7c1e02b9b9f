package txbench

import (
	"sort"
	"strings"
	"sync"
	"time"

	g "github.com/hhkbp2/txbench/generator"
)

type versionedValue struct {
	value   string
	version uint64
}

// BasicStore is an in-memory versioned key/value map shared by the
// BasicDB clients built on it. Commits are validated optimistically:
// a transaction commits only if none of the keys it read changed since.
type BasicStore struct {
	lock sync.Mutex
	data map[string]*versionedValue
}

func NewBasicStore() *BasicStore {
	return &BasicStore{
		data: make(map[string]*versionedValue),
	}
}

func (self *BasicStore) read(key string) (string, uint64, bool) {
	self.lock.Lock()
	defer self.lock.Unlock()
	v, ok := self.data[key]
	if !ok {
		return "", 0, false
	}
	return v.value, v.version, true
}

func (self *BasicStore) commit(reads map[string]uint64, writes map[string]string) bool {
	self.lock.Lock()
	defer self.lock.Unlock()
	for key, version := range reads {
		var current uint64
		if v, ok := self.data[key]; ok {
			current = v.version
		}
		if current != version {
			return false
		}
	}
	for key, value := range writes {
		v, ok := self.data[key]
		if !ok {
			v = &versionedValue{}
			self.data[key] = v
		}
		v.value = value
		v.version++
	}
	return true
}

// Len returns the number of keys ever written.
func (self *BasicStore) Len() int {
	self.lock.Lock()
	defer self.lock.Unlock()
	return len(self.data)
}

func ConcatKVStr(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values[k])
	}
	return strings.Join(parts, ", ")
}

// basicSeedOffset keeps the simulated aborts from replaying the driver's
// draws when both are given the same seed.
const basicSeedOffset = 0x5deece66d

func basicDBSeed(seed int64) int64 {
	if seed == 0 {
		return 0
	}
	return seed ^ basicSeedOffset
}

// BasicDB is a demo transactional client over a BasicStore that can
// simulate latency and spurious aborts.
type BasicDB struct {
	*ClientBase
	store            *BasicStore
	random           g.RandomSource
	verbose          bool
	randomizeDelay   bool
	toDelay          int64
	abortProbability float64

	inTxn  bool
	reads  map[string]uint64
	writes map[string]string
}

func NewBasicDB() *BasicDB {
	return NewBasicDBWithStore(NewBasicStore())
}

func NewBasicDBWithStore(store *BasicStore) *BasicDB {
	return &BasicDB{
		ClientBase: NewClientBase(),
		store:      store,
	}
}

func (self *BasicDB) Store() *BasicStore {
	return self.store
}

func (self *BasicDB) Delay() {
	if self.toDelay > 0 {
		var nanos int64
		if self.randomizeDelay {
			nanos = MillisecondToNanosecond(self.random.Int63n(self.toDelay))
			if nanos == 0 {
				return
			}
		} else {
			nanos = MillisecondToNanosecond(self.toDelay)
		}
		time.Sleep(time.Duration(nanos))
	}
}

// Initialize any state for this DB.
func (self *BasicDB) Init() error {
	p := self.GetProperties()
	var err error
	if self.verbose, err = p.GetBool(ConfigBasicDBVerbose, ConfigBasicDBVerboseDefault); err != nil {
		return err
	}
	if self.toDelay, err = p.GetInt(ConfigSimulateDelay, ConfigSimulateDelayDefault); err != nil {
		return err
	}
	if self.randomizeDelay, err = p.GetBool(ConfigRandomizeDelay, ConfigRandomizeDelayDefault); err != nil {
		return err
	}
	if self.abortProbability, err = p.GetFloat(ConfigAbortProbability, ConfigAbortProbabilityDefault); err != nil {
		return err
	}
	if self.abortProbability < 0 || self.abortProbability > 1 {
		return g.NewErrorf("%s must be within [0, 1], got %g", ConfigAbortProbability, self.abortProbability)
	}
	seed, err := p.GetInt(PropertySeed, PropertySeedDefault)
	if err != nil {
		return err
	}
	self.random = g.NewRandom(basicDBSeed(seed))
	if self.verbose {
		OutputProperties(p)
	}
	return nil
}

func (self *BasicDB) Cleanup() error {
	self.reset()
	return nil
}

func (self *BasicDB) reset() {
	self.inTxn = false
	self.reads = nil
	self.writes = nil
}

func (self *BasicDB) Begin() error {
	if self.inTxn {
		return ErrTxnAlreadyOpen
	}
	self.Delay()
	if self.verbose {
		Output("BEGIN")
	}
	self.inTxn = true
	self.reads = make(map[string]uint64)
	self.writes = make(map[string]string)
	return nil
}

func (self *BasicDB) Get(key string) (string, StatusType) {
	if !self.inTxn {
		return "", StatusBadRequest
	}
	self.Delay()
	if self.verbose {
		Output("GET %s", key)
	}
	if v, ok := self.writes[key]; ok {
		return v, StatusOK
	}
	value, version, ok := self.store.read(key)
	if _, seen := self.reads[key]; !seen {
		self.reads[key] = version
	}
	if !ok {
		return "", StatusNotFound
	}
	return value, StatusOK
}

func (self *BasicDB) Put(key string, value string) StatusType {
	if !self.inTxn {
		return StatusBadRequest
	}
	self.Delay()
	if self.verbose {
		Output("PUT %s %s", key, value)
	}
	self.writes[key] = value
	return StatusOK
}

func (self *BasicDB) Commit() bool {
	if !self.inTxn {
		return false
	}
	self.Delay()
	defer self.reset()
	if self.verbose {
		Output("COMMIT [%s]", ConcatKVStr(self.writes))
	}
	if self.abortProbability > 0 && self.random.Float64() < self.abortProbability {
		return false
	}
	return self.store.commit(self.reads, self.writes)
}

func (self *BasicDB) Abort() {
	if self.verbose {
		Output("ABORT")
	}
	self.reset()
}
