// Package client opens backend connections and layers result caching
// over query execution.
package client

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver

	"github.com/satishbabariya/querykit/query/executor"
	"github.com/satishbabariya/querykit/query/qerr"
	"github.com/satishbabariya/querykit/query/sqlgen"
)

// Client owns a backend connection handle for one provider.
type Client struct {
	db       *sql.DB
	provider string
}

// Open connects to the named provider. Supported providers: sqlite
// (served by the embedded engine driver), mysql, postgres.
func Open(provider, dsn string) (*Client, error) {
	driver := driverName(provider)
	if driver == "" {
		return nil, qerr.New(qerr.KindInvalidValue, "unsupported provider %q", provider)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, qerr.Wrap(qerr.KindAdapterError, err, "cannot open %s connection", provider)
	}
	return &Client{db: db, provider: provider}, nil
}

// FromDB wraps an existing connection handle.
func FromDB(provider string, db *sql.DB) *Client {
	return &Client{db: db, provider: provider}
}

// driverName maps provider names to registered database/sql drivers.
func driverName(provider string) string {
	switch provider {
	case "sqlite", "sqlite3":
		return executor.DriverName
	case "mysql":
		return "mysql"
	case "postgresql", "postgres":
		return "postgres"
	default:
		return ""
	}
}

// Placeholder returns the positional-parameter style the provider's
// dialect expects.
func (c *Client) Placeholder() sqlgen.Placeholder {
	switch c.provider {
	case "postgresql", "postgres":
		return sqlgen.Dollar
	default:
		return sqlgen.Question
	}
}

// Connect verifies the connection is usable.
func (c *Client) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the connection handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// Provider returns the provider name the client was opened with.
func (c *Client) Provider() string { return c.provider }

// DB returns the underlying connection handle.
func (c *Client) DB() *sql.DB { return c.db }

// NewExecutor builds an executor for table returning T rows, wired to
// the client's connection and placeholder style.
func NewExecutor[T any](c *Client, table string) (*executor.Executor[T], error) {
	opts := executor.DefaultOptions(c.db, table)
	opts.Placeholder = c.Placeholder()
	return executor.New[T](opts)
}
