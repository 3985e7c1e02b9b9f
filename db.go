package txbench

import (
	"errors"

	g "github.com/hhkbp2/txbench/generator"
)

var (
	ErrTxnAlreadyOpen = errors.New("a transaction is already open on this client")
	ErrNoOpenTxn      = errors.New("no transaction is open on this client")
	ErrCorpusTooShort = errors.New("key file has fewer keys than requested")
)

type StatusType uint8

const (
	StatusOK StatusType = 1 + iota
	StatusError
	StatusNotFound
	StatusNotImplemented
	StatusUnexpectedState
	StatusBadRequest
	StatusForbidden
	StatusServiceUnavailable
)

func (self StatusType) String() string {
	switch self {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case StatusUnexpectedState:
		return "UNEXPECTED_STATE"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusForbidden:
		return "FORBIDDEN"
	case StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOW_STATUS"
	}
}

// TxnClient is a layer for accessing a transactional store to be benchmarked.
// Each driver is given its own client instance, and a client carries at most
// one open transaction at a time.
// A client should be constructed using a no-argument constructor, so we can
// load it dynamically. Any argument-based initialization should be
// done by Init().
//
// TXBENCH never interprets the results beyond counting them: a failed
// Get/Put is recorded as-is and a Commit returning false counts as an
// aborted transaction. It never retries on the client's behalf.
type TxnClient interface {
	// Set the properties for this client.
	SetProperties(p Properties)

	// Get the properties for this client.
	GetProperties() Properties

	// Initialize any state for this client.
	// Called once per client instance, before the first transaction.
	Init() error

	// Cleanup any state for this client.
	// Called once per client instance, after the last transaction.
	Cleanup() error

	// Begin starts a new transaction. An error means the client could not
	// reach the store at all and the benchmark cannot continue.
	Begin() error

	// Get reads the value of key within the open transaction.
	Get(key string) (string, StatusType)

	// Put writes value to key within the open transaction.
	Put(key string, value string) StatusType

	// Commit tries to commit the open transaction and reports whether it
	// committed.
	Commit() bool

	// Abort discards the open transaction.
	Abort()
}

type ClientBase struct {
	p Properties
}

func NewClientBase() *ClientBase {
	return &ClientBase{}
}

func (self *ClientBase) SetProperties(p Properties) {
	self.p = p
}

func (self *ClientBase) GetProperties() Properties {
	if self.p == nil {
		self.p = NewProperties()
	}
	return self.p
}

func NewClient(database string, props Properties) (TxnClient, error) {
	f, ok := Databases[database]
	if !ok {
		return nil, g.NewErrorf("unsupported database: %s", database)
	}
	client := f()
	client.SetProperties(props)
	return client, nil
}
