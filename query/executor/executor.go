// Package executor runs queries against a SQL backend and maps rows
// back into typed results.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/querykit/internal/debug"
	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
	"github.com/satishbabariya/querykit/query/sqlgen"
)

// DefaultTimeoutMillis is the execution timeout applied when Options
// leaves TimeoutMillis unset.
const DefaultTimeoutMillis = 30000

// Options configures an Executor. It is a plain record: fill it in, or
// start from DefaultOptions and adjust.
type Options struct {
	// DB is the backend connection handle. Required.
	DB *sql.DB

	// Table is the target table name. Required.
	Table string

	// UsePreparedStatements caches one prepared statement per distinct
	// SQL text. DefaultOptions enables it.
	UsePreparedStatements bool

	// TimeoutMillis bounds each Execute call. Zero means
	// DefaultTimeoutMillis.
	TimeoutMillis int

	// IncludePlan attaches an advisory execution plan to the result
	// metadata.
	IncludePlan bool

	// Placeholder selects the positional-parameter style. Nil means
	// sqlgen.Question.
	Placeholder sqlgen.Placeholder
}

// DefaultOptions returns the options Execute is normally run with:
// prepared statements on, a 30 second timeout, no plan reporting.
func DefaultOptions(db *sql.DB, table string) Options {
	return Options{
		DB:                    db,
		Table:                 table,
		UsePreparedStatements: true,
		TimeoutMillis:         DefaultTimeoutMillis,
	}
}

// Metadata describes how a result was produced.
type Metadata struct {
	// ExecutionTimeMillis is wall-clock time for the whole call,
	// translation included.
	ExecutionTimeMillis int64 `json:"executionTime_ms"`

	// FromCache is always false here. Cache layers that serve a stored
	// result flip it on their copy.
	FromCache bool `json:"fromCache"`

	// TotalCount is the result length, or the number of groups under
	// aggregation. Under pagination it is estimated as
	// len(data)+offset; no second COUNT query is issued.
	TotalCount int `json:"totalCount"`

	// Plan is present only when Options.IncludePlan is set.
	Plan *sqlgen.Plan `json:"plan,omitempty"`
}

// Result is the uniform shape returned by Execute. Errors is non-empty
// exactly when the call failed, and then Data is empty; a call never
// populates both.
type Result[T any] struct {
	Data     []T           `json:"data"`
	Metadata Metadata      `json:"metadata"`
	Errors   []*qerr.Error `json:"errors"`
}

// Err returns the first execution error, or nil on success.
func (r *Result[T]) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Executor translates queries for one table and runs them on a shared
// connection handle. It is safe for concurrent use.
type Executor[T any] struct {
	opts  Options
	stmts map[string]*sql.Stmt
	mu    sync.RWMutex
}

// New validates opts and returns an executor for T rows.
func New[T any](opts Options) (*Executor[T], error) {
	if opts.DB == nil {
		return nil, qerr.New(qerr.KindInvalidValue, "executor requires a database handle")
	}
	if opts.Table == "" {
		return nil, qerr.New(qerr.KindInvalidValue, "executor requires a table name")
	}
	if opts.TimeoutMillis <= 0 {
		opts.TimeoutMillis = DefaultTimeoutMillis
	}
	if opts.Placeholder == nil {
		opts.Placeholder = sqlgen.Question
	}
	return &Executor[T]{opts: opts, stmts: make(map[string]*sql.Stmt)}, nil
}

// Table returns the table this executor targets.
func (e *Executor[T]) Table() string { return e.opts.Table }

// Execute translates q, runs it under the configured timeout and maps
// the rows to T. Failures are normalized into Result.Errors; the method
// itself never returns an error across the call boundary.
func (e *Executor[T]) Execute(ctx context.Context, q ast.Query[T]) *Result[T] {
	start := time.Now()
	res := &Result[T]{Data: []T{}}

	if issues := q.Validate(); len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.String()
		}
		err := qerr.New(qerr.KindInvalidSyntax, "query validation failed: %s", strings.Join(msgs, "; ")).
			WithDetail("issues", msgs)
		return e.fail(res, start, err)
	}

	stmt, err := sqlgen.TranslateWith(q, e.opts.Table, sqlgen.Options{Placeholder: e.opts.Placeholder})
	if err != nil {
		return e.fail(res, start, normalizeError(err, e.opts.Table, ""))
	}
	debug.Debug("executing query", "table", e.opts.Table, "sql", stmt.SQL, "params", len(stmt.Args))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.opts.TimeoutMillis)*time.Millisecond)
	defer cancel()

	data, err := e.run(ctx, stmt)
	if err != nil {
		return e.fail(res, start, normalizeError(err, e.opts.Table, stmt.SQL))
	}

	res.Data = data
	res.Metadata.TotalCount = totalCount(q, len(data))
	if e.opts.IncludePlan {
		res.Metadata.Plan = sqlgen.Explain(stmt)
	}
	res.Metadata.ExecutionTimeMillis = time.Since(start).Milliseconds()
	return res
}

// Count runs q reduced to a COUNT(*) aggregate and returns the matching
// row count. Ordering, pagination and projection are ignored.
func (e *Executor[T]) Count(ctx context.Context, q ast.Query[T]) (int64, error) {
	counted := q.Clone()
	counted.Ordering = nil
	counted.Pagination = nil
	counted.Projection = nil
	counted.Grouping = nil
	counted.Having = nil
	counted.Aggregations = []ast.Aggregation{{Kind: ast.AggregateCount, Alias: "n"}}

	stmt, err := sqlgen.TranslateWith(counted, e.opts.Table, sqlgen.Options{Placeholder: e.opts.Placeholder})
	if err != nil {
		return 0, normalizeError(err, e.opts.Table, "")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.opts.TimeoutMillis)*time.Millisecond)
	defer cancel()

	var n int64
	if err := e.opts.DB.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, normalizeError(err, e.opts.Table, stmt.SQL)
	}
	return n, nil
}

// Close releases the cached prepared statements. The connection handle
// belongs to the caller and stays open.
func (e *Executor[T]) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, stmt := range e.stmts {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.stmts = make(map[string]*sql.Stmt)
	return firstErr
}

type outcome[T any] struct {
	data []T
	err  error
}

// run executes stmt in its own goroutine and races it against the
// deadline. A timed-out statement is abandoned: the driver call keeps
// running until its context interrupt lands, and the goroutine closes
// whatever it produced.
func (e *Executor[T]) run(ctx context.Context, stmt *sqlgen.Statement) ([]T, error) {
	done := make(chan outcome[T], 1)
	go func() {
		rows, err := e.query(ctx, stmt)
		if err != nil {
			done <- outcome[T]{err: err}
			return
		}
		data, err := scanRows[T](rows)
		rows.Close()
		if err == nil {
			err = rows.Err()
		}
		done <- outcome[T]{data: data, err: err}
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-ctx.Done():
		return nil, qerr.Wrap(qerr.KindTimeout, ctx.Err(), "query exceeded %dms", e.opts.TimeoutMillis)
	}
}

func (e *Executor[T]) query(ctx context.Context, stmt *sqlgen.Statement) (*sql.Rows, error) {
	if !e.opts.UsePreparedStatements {
		return e.opts.DB.QueryContext(ctx, stmt.SQL, stmt.Args...)
	}
	prepared, err := e.prepared(ctx, stmt.SQL)
	if err != nil {
		return nil, err
	}
	return prepared.QueryContext(ctx, stmt.Args...)
}

// prepared returns the cached statement for query, preparing and
// caching it on first use.
func (e *Executor[T]) prepared(ctx context.Context, query string) (*sql.Stmt, error) {
	e.mu.RLock()
	stmt, ok := e.stmts[query]
	e.mu.RUnlock()
	if ok {
		return stmt, nil
	}

	stmt, err := e.opts.DB.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.stmts[query]; ok {
		stmt.Close()
		return cached, nil
	}
	e.stmts[query] = stmt
	return stmt, nil
}

// totalCount computes the TotalCount metadata field. Under pagination
// without aggregation the value is the documented len+offset estimate.
func totalCount[T any](q ast.Query[T], n int) int {
	if len(q.Aggregations) > 0 {
		return n
	}
	if q.Pagination != nil {
		return n + q.Pagination.Offset
	}
	return n
}

// normalizeError maps driver failures onto the error taxonomy so callers
// never see raw backend errors.
func normalizeError(err error, table, sql string) *qerr.Error {
	var qe *qerr.Error
	if errors.As(err, &qe) {
		return qe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return qerr.Wrap(qerr.KindTimeout, err, "query timed out")
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return qerr.Wrap(qerr.KindAdapterError, err, "table %q does not exist", table).
			WithDetail("table", table)
	case strings.Contains(msg, "syntax error"):
		return qerr.Wrap(qerr.KindInvalidSyntax, err, "generated SQL was rejected").
			WithDetail("sql", sql)
	default:
		return qerr.Wrap(qerr.KindAdapterError, err, "query execution failed")
	}
}

func (e *Executor[T]) fail(res *Result[T], start time.Time, err *qerr.Error) *Result[T] {
	res.Data = []T{}
	res.Errors = append(res.Errors, err)
	res.Metadata.ExecutionTimeMillis = time.Since(start).Milliseconds()
	return res
}
