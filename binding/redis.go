package binding

import (
	"errors"
	"sort"

	"github.com/go-redis/redis/v7"
	"github.com/hhkbp2/txbench"
)

const (
	PropertyRedisAddr            = "redis.addr"
	PropertyRedisAddrDefault     = "127.0.0.1:6379"
	PropertyRedisPassword        = "redis.password"
	PropertyRedisPasswordDefault = ""
	PropertyRedisDB              = "redis.db"
	PropertyRedisDBDefault       = "0"
)

var (
	errReadConflict = errors.New("read set changed since it was read")
)

// readValue is what a transaction saw for a key; found is false for a
// missing key.
type readValue struct {
	value string
	found bool
}

// RedisDB gives redis optimistic transactions. Reads are served straight
// from the server and remembered, writes are buffered. Commit watches every
// key the transaction touched, checks that the reads still hold and
// applies the writes in MULTI/EXEC. A concurrent change of any watched key
// aborts the commit.
type RedisDB struct {
	*txbench.ClientBase
	client     *redis.Client
	ownsClient bool

	inTxn  bool
	reads  map[string]readValue
	writes map[string]string
}

func NewRedisDB() *RedisDB {
	return &RedisDB{
		ClientBase: txbench.NewClientBase(),
		ownsClient: true,
	}
}

// NewRedisDBWithClient returns a client over c. Cleanup leaves c open.
func NewRedisDBWithClient(c *redis.Client) *RedisDB {
	return &RedisDB{
		ClientBase: txbench.NewClientBase(),
		client:     c,
	}
}

func (self *RedisDB) Init() error {
	if self.client == nil {
		props := self.GetProperties()
		db, err := props.GetInt(PropertyRedisDB, PropertyRedisDBDefault)
		if err != nil {
			return err
		}
		self.client = redis.NewClient(&redis.Options{
			Addr:     props.GetDefault(PropertyRedisAddr, PropertyRedisAddrDefault),
			Password: props.GetDefault(PropertyRedisPassword, PropertyRedisPasswordDefault),
			DB:       int(db),
		})
	}
	return self.client.Ping().Err()
}

func (self *RedisDB) Cleanup() error {
	self.reset()
	if self.ownsClient && self.client != nil {
		return self.client.Close()
	}
	return nil
}

func (self *RedisDB) reset() {
	self.inTxn = false
	self.reads = nil
	self.writes = nil
}

func (self *RedisDB) Begin() error {
	if self.inTxn {
		return txbench.ErrTxnAlreadyOpen
	}
	self.inTxn = true
	self.reads = make(map[string]readValue)
	self.writes = make(map[string]string)
	return nil
}

func (self *RedisDB) Get(key string) (string, txbench.StatusType) {
	if !self.inTxn {
		return "", txbench.StatusBadRequest
	}
	if v, ok := self.writes[key]; ok {
		return v, txbench.StatusOK
	}
	if r, ok := self.reads[key]; ok {
		if !r.found {
			return "", txbench.StatusNotFound
		}
		return r.value, txbench.StatusOK
	}
	value, err := self.client.Get(key).Result()
	switch {
	case err == redis.Nil:
		self.reads[key] = readValue{}
		return "", txbench.StatusNotFound
	case err != nil:
		txbench.Debugf("fail to read %s, err: %s", key, err)
		return "", txbench.StatusError
	}
	self.reads[key] = readValue{value: value, found: true}
	return value, txbench.StatusOK
}

func (self *RedisDB) Put(key string, value string) txbench.StatusType {
	if !self.inTxn {
		return txbench.StatusBadRequest
	}
	self.writes[key] = value
	return txbench.StatusOK
}

func (self *RedisDB) watchedKeys() []string {
	keys := make([]string, 0, len(self.reads)+len(self.writes))
	for k := range self.reads {
		keys = append(keys, k)
	}
	for k := range self.writes {
		if _, ok := self.reads[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (self *RedisDB) validate(tx *redis.Tx) error {
	for k, r := range self.reads {
		value, err := tx.Get(k).Result()
		if err == redis.Nil {
			if r.found {
				return errReadConflict
			}
			continue
		}
		if err != nil {
			return err
		}
		if !r.found || value != r.value {
			return errReadConflict
		}
	}
	return nil
}

func (self *RedisDB) Commit() bool {
	if !self.inTxn {
		return false
	}
	defer self.reset()
	if len(self.writes) == 0 && len(self.reads) == 0 {
		return true
	}
	writes := self.writes
	err := self.client.Watch(func(tx *redis.Tx) error {
		if err := self.validate(tx); err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(func(pipe redis.Pipeliner) error {
			for k, v := range writes {
				pipe.Set(k, v, 0)
			}
			return nil
		})
		return err
	}, self.watchedKeys()...)
	if err != nil {
		if err != redis.TxFailedErr && err != errReadConflict {
			txbench.Debugf("fail to commit, err: %s", err)
		}
		return false
	}
	return true
}

func (self *RedisDB) Abort() {
	self.reset()
}
