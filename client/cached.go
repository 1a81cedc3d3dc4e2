package client

import (
	"context"
	"time"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/cache"
	"github.com/satishbabariya/querykit/query/executor"
)

// Querier runs queries against one table and returns uniform results.
// *executor.Executor[T] satisfies it.
type Querier[T any] interface {
	Execute(ctx context.Context, q ast.Query[T]) *executor.Result[T]
	Table() string
}

// CachedQuerier serves repeated queries from a result cache. Only
// successful results are stored. Served results share their Data slice
// with the cached copy and must be treated as read-only.
type CachedQuerier[T any] struct {
	inner Querier[T]
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedQuerier wraps inner with c. Entries live for ttl; zero ttl
// applies the cache default.
func NewCachedQuerier[T any](inner Querier[T], c cache.Cache, ttl time.Duration) *CachedQuerier[T] {
	return &CachedQuerier[T]{inner: inner, cache: c, ttl: ttl}
}

// Execute returns the cached result when the query's fingerprint is
// live, marking it FromCache; otherwise it delegates to the inner
// querier and stores a successful result.
func (cq *CachedQuerier[T]) Execute(ctx context.Context, q ast.Query[T]) *executor.Result[T] {
	key := cache.Fingerprint(cq.inner.Table(), q)
	if v, ok := cq.cache.Get(key); ok {
		if cached, ok := v.(*executor.Result[T]); ok {
			served := *cached
			served.Metadata.FromCache = true
			return &served
		}
	}

	res := cq.inner.Execute(ctx, q)
	if len(res.Errors) == 0 {
		cq.cache.Set(key, res, cq.ttl)
	}
	return res
}

// Table returns the wrapped querier's table.
func (cq *CachedQuerier[T]) Table() string { return cq.inner.Table() }

// Invalidate drops every cached result for the wrapped table.
func (cq *CachedQuerier[T]) Invalidate() {
	cq.cache.InvalidatePattern(cq.inner.Table() + ":*")
}
