package txbench

import (
	"errors"
	"time"
)

// fakeClock only moves when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(100, 0)}
}

func (self *fakeClock) Now() time.Time {
	return self.now
}

func (self *fakeClock) Advance(d time.Duration) {
	self.now = self.now.Add(d)
}

var errFakeBegin = errors.New("store unreachable")

// fakeClient is a scripted TxnClient. Every call takes latency on clock.
type fakeClient struct {
	*ClientBase
	clock   *fakeClock
	latency time.Duration

	// commits scripts the commit outcomes in order; once used up every
	// commit succeeds.
	commits []bool
	// failBeginAt makes the n-th Begin (1-based) fail, 0 never.
	failBeginAt int

	begins  int
	gets    []string
	puts    map[string]string
	putKeys []string
	aborts  int
	calls   []string
}

func newFakeClient(clock *fakeClock, latency time.Duration) *fakeClient {
	return &fakeClient{
		ClientBase: NewClientBase(),
		clock:      clock,
		latency:    latency,
		puts:       make(map[string]string),
	}
}

func (self *fakeClient) tick(call string) {
	self.calls = append(self.calls, call)
	self.clock.Advance(self.latency)
}

func (self *fakeClient) Init() error {
	return nil
}

func (self *fakeClient) Cleanup() error {
	return nil
}

func (self *fakeClient) Begin() error {
	self.tick("begin")
	self.begins++
	if self.begins == self.failBeginAt {
		return errFakeBegin
	}
	return nil
}

func (self *fakeClient) Get(key string) (string, StatusType) {
	self.tick("get")
	self.gets = append(self.gets, key)
	v, ok := self.puts[key]
	if !ok {
		return "", StatusNotFound
	}
	return v, StatusOK
}

func (self *fakeClient) Put(key string, value string) StatusType {
	self.tick("put")
	self.puts[key] = value
	self.putKeys = append(self.putKeys, key)
	return StatusOK
}

func (self *fakeClient) Commit() bool {
	self.tick("commit")
	if len(self.commits) == 0 {
		return true
	}
	ok := self.commits[0]
	self.commits = self.commits[1:]
	return ok
}

func (self *fakeClient) Abort() {
	self.tick("abort")
	self.aborts++
}
