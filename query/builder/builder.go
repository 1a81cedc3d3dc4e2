// Package builder provides a fluent, immutable query builder API. Every
// chainable method returns a new builder; the receiver is never mutated,
// so concurrent callers may branch from a shared base builder freely.
//
// Malformed input (negative limit, empty IN list, bad branch arity)
// marks the builder at the offending call: the first error sticks, later
// calls pass it through untouched, and Build surfaces it. Err exposes it
// early for callers that want to check mid-chain.
package builder

import (
	"strings"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
)

// Builder accumulates query state through method chaining. The zero
// value is not usable; start from New or FromQuery.
type Builder[T any] struct {
	conditions   []ast.Condition
	ordering     []ast.OrderBy
	projection   *ast.Projection
	pagination   *ast.Pagination
	grouping     *ast.GroupBy
	aggregations []ast.Aggregation
	having       *ast.HavingCondition
	depth        *ast.Depth
	hints        *ast.PerformanceHints
	err          error
}

// New creates an empty builder for records of type T.
func New[T any]() *Builder[T] {
	return &Builder[T]{}
}

// FromQuery seeds a builder with a deep copy of an existing query, so
// the query can be extended without being touched.
func FromQuery[T any](q ast.Query[T]) *Builder[T] {
	cp := q.Clone()
	return &Builder[T]{
		conditions:   cp.Conditions,
		ordering:     cp.Ordering,
		projection:   cp.Projection,
		pagination:   cp.Pagination,
		grouping:     cp.Grouping,
		aggregations: cp.Aggregations,
		having:       cp.Having,
		depth:        cp.Depth,
		hints:        cp.Hints,
	}
}

// clone returns a builder whose collections are fresh copies, so appends
// on the copy never show through the original.
func (b *Builder[T]) clone() *Builder[T] {
	cp := FromQuery[T](b.snapshot())
	cp.err = b.err
	return cp
}

// snapshot assembles the current state into a query value with fully
// owned copies. It does not validate.
func (b *Builder[T]) snapshot() ast.Query[T] {
	q := ast.Query[T]{
		Conditions:   b.conditions,
		Ordering:     b.ordering,
		Projection:   b.projection,
		Pagination:   b.pagination,
		Grouping:     b.grouping,
		Aggregations: b.aggregations,
		Having:       b.having,
		Depth:        b.depth,
		Hints:        b.hints,
	}
	return q.Clone()
}

// fail returns a copy of the builder carrying an INVALID_VALUE error.
// The first recorded error wins; chainable methods are no-ops once one
// is set.
func (b *Builder[T]) fail(format string, args ...any) *Builder[T] {
	cp := b.clone()
	cp.err = qerr.New(qerr.KindInvalidValue, format, args...)
	return cp
}

func (b *Builder[T]) failWith(err error) *Builder[T] {
	cp := b.clone()
	cp.err = err
	return cp
}

// Err reports the first structural error recorded by the chain, nil when
// the chain is clean so far. Build returns the same error.
func (b *Builder[T]) Err() error {
	return b.err
}

// Build assembles the immutable query, deep-copying every collection,
// and validates it. A builder carrying a structural error returns that
// error; validation failures come back as one INVALID_SYNTAX error
// listing every violation.
func (b *Builder[T]) Build() (ast.Query[T], error) {
	if b.err != nil {
		return ast.Query[T]{}, b.err
	}
	q := b.snapshot()
	if issues := q.Validate(); len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.String()
		}
		return ast.Query[T]{}, qerr.New(qerr.KindInvalidSyntax,
			"query validation failed: %s", strings.Join(msgs, "; ")).
			WithDetail("issues", issues)
	}
	return q, nil
}

// Conditions returns a deep copy of the accumulated top-level conditions.
func (b *Builder[T]) Conditions() []ast.Condition {
	return ast.CloneConditions(b.conditions)
}

// Ordering returns a copy of the accumulated ordering criteria.
func (b *Builder[T]) Ordering() []ast.OrderBy {
	if b.ordering == nil {
		return nil
	}
	cp := make([]ast.OrderBy, len(b.ordering))
	copy(cp, b.ordering)
	return cp
}

// Pagination returns a copy of the pagination window, nil when unset.
func (b *Builder[T]) Pagination() *ast.Pagination {
	if b.pagination == nil {
		return nil
	}
	p := *b.pagination
	return &p
}

// Equivalent reports whether two builders would currently build
// structurally equal queries. Builders carrying errors are never
// equivalent.
func (b *Builder[T]) Equivalent(other *Builder[T]) bool {
	if other == nil || b.err != nil || other.err != nil {
		return false
	}
	return b.snapshot().Equal(other.snapshot())
}
