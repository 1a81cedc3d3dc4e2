// Package optimizer provides query optimization utilities: a condition
// cost model, cheapest-first reordering and index suggestions.
package optimizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/satishbabariya/querykit/query/ast"
)

// Per-condition base costs. Set membership grows with cardinality,
// negation multiplies the child cost.
const (
	costEquality   = 1
	costComparison = 2
	costPattern    = 4
	costSetBase    = 2
	costNull       = 1
	notMultiplier  = 1.5
)

// EstimateCondition returns the relative evaluation cost of a condition
// tree. The scale is unitless; only the ordering of estimates matters.
func EstimateCondition(c ast.Condition) float64 {
	switch n := c.(type) {
	case ast.EqualityCondition:
		return costEquality
	case ast.ComparisonCondition:
		return costComparison
	case ast.PatternCondition:
		return costPattern
	case ast.SetCondition:
		if len(n.Values) == 0 {
			return costSetBase
		}
		return costSetBase + math.Log2(float64(len(n.Values)))
	case ast.NullCondition:
		return costNull
	case ast.CompositeCondition:
		var sum float64
		for _, child := range n.Children {
			sum += EstimateCondition(child)
		}
		if n.Op == ast.OpNot {
			sum *= notMultiplier
		}
		return sum
	default:
		return 0
	}
}

// EstimateQuery sums the cost of the query's top-level conditions.
func EstimateQuery[T any](q ast.Query[T]) float64 {
	var sum float64
	for _, c := range q.Conditions {
		sum += EstimateCondition(c)
	}
	return sum
}

// Optimize returns a copy of the query with conditions reordered
// cheapest-first so inexpensive filters run before expensive ones.
// Reordering applies to the top level and recursively inside and/or
// composites; it never changes which rows match. Equal-cost conditions
// keep their relative order.
func Optimize[T any](q ast.Query[T]) ast.Query[T] {
	out := q.Clone()
	for i, c := range out.Conditions {
		out.Conditions[i] = reorderCondition(c)
	}
	sortByCost(out.Conditions)
	return out
}

func reorderCondition(c ast.Condition) ast.Condition {
	composite, ok := c.(ast.CompositeCondition)
	if !ok {
		return c
	}
	children := make([]ast.Condition, len(composite.Children))
	for i, child := range composite.Children {
		children[i] = reorderCondition(child)
	}
	if composite.Op == ast.OpAnd || composite.Op == ast.OpOr {
		sortByCost(children)
	}
	return ast.CompositeCondition{Op: composite.Op, Children: children}
}

func sortByCost(conditions []ast.Condition) {
	sort.SliceStable(conditions, func(i, j int) bool {
		return EstimateCondition(conditions[i]) < EstimateCondition(conditions[j])
	})
}

// SuggestIndexFields returns the union of equality-condition fields,
// ordering fields and grouping fields, in first-seen order without
// duplicates. These are the columns an index would serve.
func SuggestIndexFields[T any](q ast.Query[T]) []string {
	seen := make(map[string]struct{})
	var fields []string
	add := func(field string) {
		if field == "" {
			return
		}
		if _, ok := seen[field]; ok {
			return
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}

	var walk func(c ast.Condition)
	walk = func(c ast.Condition) {
		switch n := c.(type) {
		case ast.EqualityCondition:
			add(n.Field)
		case ast.CompositeCondition:
			for _, child := range n.Children {
				walk(child)
			}
		}
	}
	for _, c := range q.Conditions {
		walk(c)
	}
	for _, o := range q.Ordering {
		add(o.Field)
	}
	if q.Grouping != nil {
		for _, f := range q.Grouping.Fields {
			add(f)
		}
	}
	return fields
}

// SuggestIndexes renders CREATE INDEX statements for the query's index
// candidates: one single-column index per candidate field, plus one
// composite index when the query both filters on equality and orders.
func SuggestIndexes[T any](table string, q ast.Query[T]) []string {
	fields := SuggestIndexFields(q)
	suggestions := make([]string, 0, len(fields)+1)
	for _, field := range fields {
		suggestions = append(suggestions, fmt.Sprintf(
			"CREATE INDEX idx_%s_%s ON %s(%s)", table, field, table, field))
	}

	var equality []string
	var walk func(c ast.Condition)
	walk = func(c ast.Condition) {
		switch n := c.(type) {
		case ast.EqualityCondition:
			if n.Op == ast.OpEqual {
				equality = append(equality, n.Field)
			}
		case ast.CompositeCondition:
			for _, child := range n.Children {
				walk(child)
			}
		}
	}
	for _, c := range q.Conditions {
		walk(c)
	}
	if len(equality) > 0 && len(q.Ordering) > 0 {
		cols := make([]string, 0, len(equality)+len(q.Ordering))
		cols = append(cols, equality...)
		for _, o := range q.Ordering {
			cols = append(cols, o.Field)
		}
		suggestions = append(suggestions, fmt.Sprintf(
			"CREATE INDEX idx_%s_composite ON %s(%s)", table, table, strings.Join(cols, ", ")))
	}
	return suggestions
}
