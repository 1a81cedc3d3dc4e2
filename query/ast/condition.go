// Package ast defines the storage-agnostic query model: condition trees,
// ordering, projection, pagination, grouping and aggregation. Values in the
// tree are plain Go scalars; translation to a concrete backend dialect
// lives in sqlgen.
package ast

// EqualityOp compares a field against a single value.
type EqualityOp string

const (
	OpEqual    EqualityOp = "="
	OpNotEqual EqualityOp = "!="
)

// ComparisonOp orders a field against a single value.
type ComparisonOp string

const (
	OpGreaterThan    ComparisonOp = ">"
	OpGreaterOrEqual ComparisonOp = ">="
	OpLessThan       ComparisonOp = "<"
	OpLessOrEqual    ComparisonOp = "<="
)

// PatternOp matches a string field against a pattern.
type PatternOp string

const (
	OpContains   PatternOp = "contains"
	OpStartsWith PatternOp = "starts_with"
	OpEndsWith   PatternOp = "ends_with"
	OpMatches    PatternOp = "matches"
)

// SetOp tests membership of a field in a value list.
type SetOp string

const (
	OpIn    SetOp = "in"
	OpNotIn SetOp = "not_in"
)

// NullOp tests a field for null-ness.
type NullOp string

const (
	OpIsNull    NullOp = "is_null"
	OpIsNotNull NullOp = "is_not_null"
)

// CompositeOp combines child conditions.
type CompositeOp string

const (
	OpAnd CompositeOp = "and"
	OpOr  CompositeOp = "or"
	OpNot CompositeOp = "not"
)

// Condition is one node of a filter tree. The six implementations in this
// package are the only ones; consumers dispatch with a type switch.
type Condition interface {
	isCondition()
}

// EqualityCondition compares a field to a single scalar value.
type EqualityCondition struct {
	Field string
	Op    EqualityOp
	Value any
}

func (EqualityCondition) isCondition() {}

// ComparisonCondition orders a field against a single scalar value.
type ComparisonCondition struct {
	Field string
	Op    ComparisonOp
	Value any
}

func (ComparisonCondition) isCondition() {}

// PatternCondition matches a string field against a pattern. CaseSensitive
// defaults to true at the builder level; matches interprets Value as a
// regular expression on backends that support it.
type PatternCondition struct {
	Field         string
	Op            PatternOp
	Value         string
	CaseSensitive bool
}

func (PatternCondition) isCondition() {}

// SetCondition tests membership in a non-empty value list.
type SetCondition struct {
	Field  string
	Op     SetOp
	Values []any
}

func (SetCondition) isCondition() {}

// NullCondition tests a field for null-ness. It carries no value.
type NullCondition struct {
	Field string
	Op    NullOp
}

func (NullCondition) isCondition() {}

// CompositeCondition combines children with and/or/not. A not node holds
// exactly one child; and/or hold at least one.
type CompositeCondition struct {
	Op       CompositeOp
	Children []Condition
}

func (CompositeCondition) isCondition() {}

// Equal builds an equality condition.
func Equal(field string, value any) Condition {
	return EqualityCondition{Field: field, Op: OpEqual, Value: value}
}

// NotEqual builds a negated equality condition.
func NotEqual(field string, value any) Condition {
	return EqualityCondition{Field: field, Op: OpNotEqual, Value: value}
}

// Compare builds a comparison condition.
func Compare(field string, op ComparisonOp, value any) Condition {
	return ComparisonCondition{Field: field, Op: op, Value: value}
}

// Match builds a pattern condition.
func Match(field string, op PatternOp, value string, caseSensitive bool) Condition {
	return PatternCondition{Field: field, Op: op, Value: value, CaseSensitive: caseSensitive}
}

// In builds a set membership condition. Values are copied.
func In(field string, values ...any) Condition {
	cp := make([]any, len(values))
	copy(cp, values)
	return SetCondition{Field: field, Op: OpIn, Values: cp}
}

// NotIn builds a negated set membership condition. Values are copied.
func NotIn(field string, values ...any) Condition {
	cp := make([]any, len(values))
	copy(cp, values)
	return SetCondition{Field: field, Op: OpNotIn, Values: cp}
}

// IsNull builds a null test.
func IsNull(field string) Condition {
	return NullCondition{Field: field, Op: OpIsNull}
}

// IsNotNull builds a not-null test.
func IsNotNull(field string) Condition {
	return NullCondition{Field: field, Op: OpIsNotNull}
}

// And combines conditions with AND. Children are copied.
func And(children ...Condition) Condition {
	cp := make([]Condition, len(children))
	copy(cp, children)
	return CompositeCondition{Op: OpAnd, Children: cp}
}

// Or combines conditions with OR. Children are copied.
func Or(children ...Condition) Condition {
	cp := make([]Condition, len(children))
	copy(cp, children)
	return CompositeCondition{Op: OpOr, Children: cp}
}

// Not negates a single child condition.
func Not(child Condition) Condition {
	return CompositeCondition{Op: OpNot, Children: []Condition{child}}
}
