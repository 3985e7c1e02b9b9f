package binding

import (
	"github.com/hhkbp2/txbench"
)

// AddBindings registers the store clients of this package with the
// command line.
func AddBindings() {
	txbench.Databases["mysql"] = func() txbench.TxnClient {
		return NewMysqlDB()
	}
	txbench.Databases["redis"] = func() txbench.TxnClient {
		return NewRedisDB()
	}
}
