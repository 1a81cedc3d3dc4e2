package executor

import (
	"database/sql"
	"regexp"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this package. It is
// the stock sqlite3 driver extended with a REGEXP function so pattern
// conditions using the matches operator run natively.
const DriverName = "sqlite3_querykit"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// SQLite rewrites `value REGEXP pattern` as regexp(pattern, value).
			return conn.RegisterFunc("regexp", func(pattern, value string) (bool, error) {
				return regexp.MatchString(pattern, value)
			}, true)
		},
	})
}
