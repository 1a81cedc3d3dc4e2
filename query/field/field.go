// Package field provides typed field expressions for building
// conditions without raw operator strings.
package field

import (
	"time"

	"github.com/satishbabariya/querykit/query/ast"
)

// String is a text-valued field.
type String struct{ name string }

// NewString names a text field.
func NewString(name string) String { return String{name: name} }

// Name returns the field name.
func (f String) Name() string { return f.name }

// EQ creates an equality condition
func (f String) EQ(value string) ast.Condition { return ast.Equal(f.name, value) }

// NEQ creates a not-equal condition
func (f String) NEQ(value string) ast.Condition { return ast.NotEqual(f.name, value) }

// Contains creates a case-sensitive substring condition
func (f String) Contains(value string) ast.Condition {
	return ast.Match(f.name, ast.OpContains, value, true)
}

// ContainsFold creates a case-insensitive substring condition
func (f String) ContainsFold(value string) ast.Condition {
	return ast.Match(f.name, ast.OpContains, value, false)
}

// StartsWith creates a prefix condition
func (f String) StartsWith(value string) ast.Condition {
	return ast.Match(f.name, ast.OpStartsWith, value, true)
}

// EndsWith creates a suffix condition
func (f String) EndsWith(value string) ast.Condition {
	return ast.Match(f.name, ast.OpEndsWith, value, true)
}

// Matches creates a regular-expression condition
func (f String) Matches(pattern string) ast.Condition {
	return ast.Match(f.name, ast.OpMatches, pattern, true)
}

// In creates a set membership condition
func (f String) In(values ...string) ast.Condition {
	return ast.In(f.name, anyValues(values)...)
}

// NotIn creates a negated set membership condition
func (f String) NotIn(values ...string) ast.Condition {
	return ast.NotIn(f.name, anyValues(values)...)
}

// IsNull creates an IS NULL condition
func (f String) IsNull() ast.Condition { return ast.IsNull(f.name) }

// IsNotNull creates an IS NOT NULL condition
func (f String) IsNotNull() ast.Condition { return ast.IsNotNull(f.name) }

// Numeric constrains number-valued fields.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Number is a numeric field.
type Number[T Numeric] struct{ name string }

// NewNumber names a numeric field.
func NewNumber[T Numeric](name string) Number[T] { return Number[T]{name: name} }

// Name returns the field name.
func (f Number[T]) Name() string { return f.name }

// EQ creates an equality condition
func (f Number[T]) EQ(value T) ast.Condition { return ast.Equal(f.name, value) }

// NEQ creates a not-equal condition
func (f Number[T]) NEQ(value T) ast.Condition { return ast.NotEqual(f.name, value) }

// GT creates a greater-than condition
func (f Number[T]) GT(value T) ast.Condition {
	return ast.Compare(f.name, ast.OpGreaterThan, value)
}

// GTE creates a greater-or-equal condition
func (f Number[T]) GTE(value T) ast.Condition {
	return ast.Compare(f.name, ast.OpGreaterOrEqual, value)
}

// LT creates a less-than condition
func (f Number[T]) LT(value T) ast.Condition {
	return ast.Compare(f.name, ast.OpLessThan, value)
}

// LTE creates a less-or-equal condition
func (f Number[T]) LTE(value T) ast.Condition {
	return ast.Compare(f.name, ast.OpLessOrEqual, value)
}

// Between combines GTE and LTE over an inclusive range.
func (f Number[T]) Between(low, high T) ast.Condition {
	return ast.And(f.GTE(low), f.LTE(high))
}

// In creates a set membership condition
func (f Number[T]) In(values ...T) ast.Condition {
	return ast.In(f.name, anyValues(values)...)
}

// NotIn creates a negated set membership condition
func (f Number[T]) NotIn(values ...T) ast.Condition {
	return ast.NotIn(f.name, anyValues(values)...)
}

// IsNull creates an IS NULL condition
func (f Number[T]) IsNull() ast.Condition { return ast.IsNull(f.name) }

// IsNotNull creates an IS NOT NULL condition
func (f Number[T]) IsNotNull() ast.Condition { return ast.IsNotNull(f.name) }

// Bool is a boolean field.
type Bool struct{ name string }

// NewBool names a boolean field.
func NewBool(name string) Bool { return Bool{name: name} }

// Name returns the field name.
func (f Bool) Name() string { return f.name }

// EQ creates an equality condition
func (f Bool) EQ(value bool) ast.Condition { return ast.Equal(f.name, value) }

// IsTrue matches rows where the field is true.
func (f Bool) IsTrue() ast.Condition { return f.EQ(true) }

// IsFalse matches rows where the field is false.
func (f Bool) IsFalse() ast.Condition { return f.EQ(false) }

// Time is a timestamp field.
type Time struct{ name string }

// NewTime names a timestamp field.
func NewTime(name string) Time { return Time{name: name} }

// Name returns the field name.
func (f Time) Name() string { return f.name }

// EQ creates an equality condition
func (f Time) EQ(value time.Time) ast.Condition { return ast.Equal(f.name, value) }

// Before matches timestamps strictly earlier than value.
func (f Time) Before(value time.Time) ast.Condition {
	return ast.Compare(f.name, ast.OpLessThan, value)
}

// After matches timestamps strictly later than value.
func (f Time) After(value time.Time) ast.Condition {
	return ast.Compare(f.name, ast.OpGreaterThan, value)
}

// OnOrBefore matches timestamps up to and including value.
func (f Time) OnOrBefore(value time.Time) ast.Condition {
	return ast.Compare(f.name, ast.OpLessOrEqual, value)
}

// OnOrAfter matches timestamps from value on.
func (f Time) OnOrAfter(value time.Time) ast.Condition {
	return ast.Compare(f.name, ast.OpGreaterOrEqual, value)
}

// IsNull creates an IS NULL condition
func (f Time) IsNull() ast.Condition { return ast.IsNull(f.name) }

// IsNotNull creates an IS NOT NULL condition
func (f Time) IsNotNull() ast.Condition { return ast.IsNotNull(f.name) }

func anyValues[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
