package binding

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hhkbp2/txbench"
)

const (
	PropertyMysqlHost                = "mysql.host"
	PropertyMysqlHostDefault         = "127.0.0.1"
	PropertyMysqlPort                = "mysql.port"
	PropertyMysqlPortDefault         = "3306"
	PropertyMysqlDatabase            = "mysql.db"
	PropertyMysqlDatabaseDefault     = "db"
	PropertyMysqlUser                = "mysql.user"
	PropertyMysqlUserDefault         = "user"
	PropertyMysqlPassword            = "mysql.password"
	PropertyMysqlPasswordDefault     = "password"
	PropertyMysqlOptions             = "mysql.options"
	PropertyMysqlOptionsDefault      = "charset=utf8"
	PropertyMysqlTable               = "mysql.table"
	PropertyMysqlTableDefault        = "txbench"
	PropertyMysqlPrimaryKey          = "mysql.primarykey"
	PropertyMysqlPrimaryKeyDefault   = "txbench_key"
	PropertyMysqlValueColumn         = "mysql.valuecolumn"
	PropertyMysqlValueColumnDefault  = "txbench_value"
	PropertyMysqlLockingReads        = "mysql.lockingreads"
	PropertyMysqlLockingReadsDefault = "false"
)

// MysqlDB runs every benchmark transaction as a database/sql transaction.
// Reads go to the server as they are issued. Writes are buffered and sent
// as upserts when the transaction commits, so a failed write shows up as
// an aborted commit.
type MysqlDB struct {
	*txbench.ClientBase
	db        *sql.DB
	ownsDB    bool
	readStat  string
	writeStat string

	tx     *sql.Tx
	writes map[string]string
}

func NewMysqlDB() *MysqlDB {
	return &MysqlDB{
		ClientBase: txbench.NewClientBase(),
		ownsDB:     true,
	}
}

// NewMysqlDBWithConn returns a client over an already opened handle.
// Cleanup leaves db open.
func NewMysqlDBWithConn(db *sql.DB) *MysqlDB {
	return &MysqlDB{
		ClientBase: txbench.NewClientBase(),
		db:         db,
	}
}

func (self *MysqlDB) Init() error {
	props := self.GetProperties()
	table := props.GetDefault(PropertyMysqlTable, PropertyMysqlTableDefault)
	primaryKey := props.GetDefault(PropertyMysqlPrimaryKey, PropertyMysqlPrimaryKeyDefault)
	valueColumn := props.GetDefault(PropertyMysqlValueColumn, PropertyMysqlValueColumnDefault)
	lockingReads, err := props.GetBool(PropertyMysqlLockingReads, PropertyMysqlLockingReadsDefault)
	if err != nil {
		return err
	}
	self.readStat = createReadStat(table, primaryKey, valueColumn, lockingReads)
	self.writeStat = createWriteStat(table, primaryKey, valueColumn)
	if self.db != nil {
		return nil
	}

	host := props.GetDefault(PropertyMysqlHost, PropertyMysqlHostDefault)
	port, err := strconv.ParseInt(props.GetDefault(PropertyMysqlPort, PropertyMysqlPortDefault), 0, 32)
	if err != nil {
		return err
	}
	database := props.GetDefault(PropertyMysqlDatabase, PropertyMysqlDatabaseDefault)
	user := props.GetDefault(PropertyMysqlUser, PropertyMysqlUserDefault)
	password := props.GetDefault(PropertyMysqlPassword, PropertyMysqlPasswordDefault)
	options := props.GetDefault(PropertyMysqlOptions, PropertyMysqlOptionsDefault)
	sourceName := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", user, password, host, port, database, options)
	db, err := sql.Open("mysql", sourceName)
	if err != nil {
		return err
	}
	self.db = db
	return nil
}

func (self *MysqlDB) Cleanup() error {
	if self.tx != nil {
		self.tx.Rollback()
		self.reset()
	}
	if self.ownsDB && self.db != nil {
		return self.db.Close()
	}
	return nil
}

func createReadStat(table, primaryKey, valueColumn string, locking bool) string {
	statement := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", valueColumn, table, primaryKey)
	if locking {
		statement += " FOR UPDATE"
	}
	return statement
}

func createWriteStat(table, primaryKey, valueColumn string) string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) ON DUPLICATE KEY UPDATE %s = VALUES(%s)",
		table, primaryKey, valueColumn, valueColumn, valueColumn)
}

func (self *MysqlDB) reset() {
	self.tx = nil
	self.writes = nil
}

func (self *MysqlDB) Begin() error {
	if self.tx != nil {
		return txbench.ErrTxnAlreadyOpen
	}
	tx, err := self.db.Begin()
	if err != nil {
		return err
	}
	self.tx = tx
	self.writes = make(map[string]string)
	return nil
}

func (self *MysqlDB) Get(key string) (string, txbench.StatusType) {
	if self.tx == nil {
		return "", txbench.StatusBadRequest
	}
	if v, ok := self.writes[key]; ok {
		return v, txbench.StatusOK
	}
	var value string
	err := self.tx.QueryRow(self.readStat, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", txbench.StatusNotFound
		}
		txbench.Debugf("fail to read %s, err: %s", key, err)
		return "", txbench.StatusError
	}
	return value, txbench.StatusOK
}

func (self *MysqlDB) Put(key string, value string) txbench.StatusType {
	if self.tx == nil {
		return txbench.StatusBadRequest
	}
	self.writes[key] = value
	return txbench.StatusOK
}

// Commit writes the buffered values in key order and commits. Any failure
// rolls the transaction back.
func (self *MysqlDB) Commit() bool {
	tx := self.tx
	if tx == nil {
		return false
	}
	writes := self.writes
	self.reset()

	keys := make([]string, 0, len(writes))
	for k := range writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.Exec(self.writeStat, k, writes[k]); err != nil {
			txbench.Debugf("fail to write %s, err: %s", k, err)
			tx.Rollback()
			return false
		}
	}
	if err := tx.Commit(); err != nil {
		txbench.Debugf("fail to commit, err: %s", err)
		return false
	}
	return true
}

func (self *MysqlDB) Abort() {
	if self.tx == nil {
		return
	}
	if err := self.tx.Rollback(); err != nil {
		txbench.Debugf("fail to rollback, err: %s", err)
	}
	self.reset()
}
