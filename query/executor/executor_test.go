package executor

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/builder"
	"github.com/satishbabariya/querykit/query/qerr"
)

// slowDriverName serves the timeout tests: its regexp function stalls
// long enough that a short deadline always fires first.
const slowDriverName = "sqlite3_querykit_slow"

func init() {
	sql.Register(slowDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", func(pattern, value string) (bool, error) {
				time.Sleep(250 * time.Millisecond)
				return false, nil
			}, true)
		},
	})
}

type record = map[string]any

func openTestDB(t *testing.T, driver string) *sql.DB {
	t.Helper()
	db, err := sql.Open(driver, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A single in-memory sqlite handle must not be shared across pooled
	// connections.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE employees (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		dept TEXT NOT NULL,
		salary REAL NOT NULL,
		hired_at TEXT NOT NULL,
		manager_id INTEGER
	)`)
	require.NoError(t, err)

	rows := []struct {
		name, dept string
		salary     float64
		hiredAt    string
		managerID  any
	}{
		{"alice", "eng", 120000, "2021-03-15", nil},
		{"bob", "eng", 95000, "2022-07-01", 1},
		{"carol", "sales", 88000, "2020-01-20", nil},
		{"dave", "sales", 91000, "2023-05-10", 3},
		{"erin", "eng", 101000, "2022-11-30", 1},
	}
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO employees (name, dept, salary, hired_at, manager_id) VALUES (?, ?, ?, ?, ?)`,
			r.name, r.dept, r.salary, r.hiredAt, r.managerID)
		require.NoError(t, err)
	}
	return db
}

func newTestExecutor(t *testing.T, db *sql.DB) *Executor[record] {
	t.Helper()
	exec, err := New[record](DefaultOptions(db, "employees"))
	require.NoError(t, err)
	t.Cleanup(func() { exec.Close() })
	return exec
}

func TestExecuteMapsRows(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q, err := builder.New[record]().
		Equals("dept", "eng").
		OrderBy("salary", ast.Descending).
		Build()
	require.NoError(t, err)

	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data, 3)
	require.Equal(t, 3, res.Metadata.TotalCount)
	require.False(t, res.Metadata.FromCache)
	require.Nil(t, res.Metadata.Plan)

	names := make([]string, len(res.Data))
	for i, row := range res.Data {
		names[i] = row["name"].(string)
	}
	require.Equal(t, []string{"alice", "erin", "bob"}, names)

	// Date-shaped text columns come back as time.Time.
	hired, ok := res.Data[0]["hired_at"].(time.Time)
	require.True(t, ok, "hired_at = %T, want time.Time", res.Data[0]["hired_at"])
	require.Equal(t, 2021, hired.Year())
}

func TestExecuteMapsStructs(t *testing.T) {
	type Employee struct {
		ID        int64     `db:"id"`
		Name      string    `db:"name"`
		Dept      string    `db:"dept"`
		Salary    float64   `db:"salary"`
		HiredAt   time.Time `db:"hired_at"`
		ManagerID *int64    `db:"manager_id"`
	}

	db := openTestDB(t, DriverName)
	exec, err := New[Employee](DefaultOptions(db, "employees"))
	require.NoError(t, err)
	defer exec.Close()

	q, err := builder.New[Employee]().
		Equals("name", "bob").
		Build()
	require.NoError(t, err)

	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data, 1)

	bob := res.Data[0]
	require.Equal(t, "bob", bob.Name)
	require.Equal(t, 95000.0, bob.Salary)
	require.Equal(t, 2022, bob.HiredAt.Year())
	require.NotNil(t, bob.ManagerID)
	require.Equal(t, int64(1), *bob.ManagerID)
}

func TestExecuteAggregation(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q, err := builder.New[record]().
		GroupBy("dept").
		Count("total").
		OrderBy("dept", ast.Ascending).
		Build()
	require.NoError(t, err)

	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data, 2)
	require.Equal(t, 2, res.Metadata.TotalCount, "total count under aggregation is the group count")

	require.Equal(t, "eng", res.Data[0]["dept"])
	require.Equal(t, int64(3), res.Data[0]["total"])
	require.Equal(t, "sales", res.Data[1]["dept"])
	require.Equal(t, int64(2), res.Data[1]["total"])
}

func TestExecuteMatchesRunsRegexp(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q, err := builder.New[record]().
		MatchesRegex("name", "^[ab]").
		OrderBy("name", ast.Ascending).
		Build()
	require.NoError(t, err)

	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data, 2)
	require.Equal(t, "alice", res.Data[0]["name"])
	require.Equal(t, "bob", res.Data[1]["name"])
}

func TestTotalCountEstimateUnderPagination(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q, err := builder.New[record]().
		OrderBy("id", ast.Ascending).
		Paginate(2, 2).
		Build()
	require.NoError(t, err)

	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data, 2)
	require.Equal(t, 4, res.Metadata.TotalCount, "estimate is len(data)+offset")
}

func TestExecuteIncludesPlan(t *testing.T) {
	db := openTestDB(t, DriverName)
	opts := DefaultOptions(db, "employees")
	opts.IncludePlan = true
	exec, err := New[record](opts)
	require.NoError(t, err)
	defer exec.Close()

	q, err := builder.New[record]().
		Equals("dept", "eng").
		OrderBy("name", ast.Ascending).
		Limit(2).
		Build()
	require.NoError(t, err)

	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Metadata.Plan)
	require.NotEmpty(t, res.Metadata.Plan.Steps)
	require.Greater(t, res.Metadata.Plan.EstimatedCost, 0.0)
}

func TestExecuteMissingTable(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec, err := New[record](DefaultOptions(db, "no_such_relation"))
	require.NoError(t, err)
	defer exec.Close()

	res := exec.Execute(context.Background(), ast.Query[record]{})
	require.Empty(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, qerr.KindAdapterError, res.Errors[0].Kind)
	require.Equal(t, "no_such_relation", res.Errors[0].Detail["table"])
}

func TestExecuteRejectsInvalidQuery(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q := ast.Query[record]{Pagination: &ast.Pagination{Limit: -1}}
	res := exec.Execute(context.Background(), q)
	require.Empty(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, qerr.KindInvalidSyntax, res.Errors[0].Kind)
}

func TestExecuteTimeout(t *testing.T) {
	db := openTestDB(t, slowDriverName)
	opts := DefaultOptions(db, "employees")
	opts.TimeoutMillis = 1
	exec, err := New[record](opts)
	require.NoError(t, err)
	defer exec.Close()

	q, err := builder.New[record]().
		MatchesRegex("name", "anything").
		Build()
	require.NoError(t, err)

	start := time.Now()
	res := exec.Execute(context.Background(), q)
	require.Less(t, time.Since(start), 200*time.Millisecond, "timeout must fire before the backend finishes")

	require.Empty(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, qerr.KindTimeout, res.Errors[0].Kind)
}

func TestPreparedStatementsAreCachedPerSQL(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q, err := builder.New[record]().Equals("dept", "eng").Build()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res := exec.Execute(context.Background(), q)
		require.Empty(t, res.Errors)
	}

	exec.mu.RLock()
	cached := len(exec.stmts)
	exec.mu.RUnlock()
	require.Equal(t, 1, cached)
}

func TestCount(t *testing.T) {
	db := openTestDB(t, DriverName)
	exec := newTestExecutor(t, db)

	q, err := builder.New[record]().
		GreaterThan("salary", 90000).
		OrderBy("name", ast.Ascending).
		Limit(1).
		Build()
	require.NoError(t, err)

	n, err := exec.Count(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, int64(4), n, "count ignores ordering and pagination")
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New[record](Options{})
	require.Error(t, err)
	require.Equal(t, qerr.KindInvalidValue, qerr.KindOf(err))

	db := openTestDB(t, DriverName)
	_, err = New[record](Options{DB: db})
	require.Error(t, err)
	require.Equal(t, qerr.KindInvalidValue, qerr.KindOf(err))
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"plain string", "hello", "hello"},
		{"bytes become string", []byte("hello"), "hello"},
		{"int passes through", int64(42), int64(42)},
		{"almost a date", "2021-13-99", "2021-13-99"},
		{"short string", "2021", "2021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}

	got := normalizeValue("2021-03-15")
	d, ok := got.(time.Time)
	require.True(t, ok, "date string = %T, want time.Time", got)
	require.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), d)

	got = normalizeValue("2021-03-15 10:30:00")
	dt, ok := got.(time.Time)
	require.True(t, ok)
	require.Equal(t, 10, dt.Hour())
}
