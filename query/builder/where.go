package builder

import "github.com/satishbabariya/querykit/query/ast"

func (b *Builder[T]) addCondition(c ast.Condition) *Builder[T] {
	if b.err != nil {
		return b
	}
	cp := b.clone()
	cp.conditions = append(cp.conditions, c)
	return cp
}

// Where appends an already constructed condition. Use it to attach
// conditions built elsewhere, such as parser output; the typed methods
// below cover the common cases.
func (b *Builder[T]) Where(c ast.Condition) *Builder[T] {
	if c == nil {
		return b.fail("where requires a condition")
	}
	return b.addCondition(c)
}

// Equals adds an equality condition.
func (b *Builder[T]) Equals(field string, value any) *Builder[T] {
	return b.addCondition(ast.Equal(field, value))
}

// NotEquals adds a not-equals condition.
func (b *Builder[T]) NotEquals(field string, value any) *Builder[T] {
	return b.addCondition(ast.NotEqual(field, value))
}

// GreaterThan adds a greater-than condition.
func (b *Builder[T]) GreaterThan(field string, value any) *Builder[T] {
	return b.addCondition(ast.Compare(field, ast.OpGreaterThan, value))
}

// GreaterOrEqual adds a greater-or-equal condition.
func (b *Builder[T]) GreaterOrEqual(field string, value any) *Builder[T] {
	return b.addCondition(ast.Compare(field, ast.OpGreaterOrEqual, value))
}

// LessThan adds a less-than condition.
func (b *Builder[T]) LessThan(field string, value any) *Builder[T] {
	return b.addCondition(ast.Compare(field, ast.OpLessThan, value))
}

// LessOrEqual adds a less-or-equal condition.
func (b *Builder[T]) LessOrEqual(field string, value any) *Builder[T] {
	return b.addCondition(ast.Compare(field, ast.OpLessOrEqual, value))
}

// Contains adds a case-sensitive substring condition.
func (b *Builder[T]) Contains(field, value string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpContains, value, true))
}

// ContainsFold adds a case-insensitive substring condition.
func (b *Builder[T]) ContainsFold(field, value string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpContains, value, false))
}

// StartsWith adds a case-sensitive prefix condition.
func (b *Builder[T]) StartsWith(field, value string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpStartsWith, value, true))
}

// StartsWithFold adds a case-insensitive prefix condition.
func (b *Builder[T]) StartsWithFold(field, value string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpStartsWith, value, false))
}

// EndsWith adds a case-sensitive suffix condition.
func (b *Builder[T]) EndsWith(field, value string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpEndsWith, value, true))
}

// EndsWithFold adds a case-insensitive suffix condition.
func (b *Builder[T]) EndsWithFold(field, value string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpEndsWith, value, false))
}

// MatchesRegex adds a regular-expression condition. Support depends on
// the executing backend.
func (b *Builder[T]) MatchesRegex(field, pattern string) *Builder[T] {
	return b.addCondition(ast.Match(field, ast.OpMatches, pattern, true))
}

// In adds a set membership condition. The list must not be empty.
func (b *Builder[T]) In(field string, values ...any) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(values) == 0 {
		return b.fail("in on %q requires at least one value", field)
	}
	return b.addCondition(ast.In(field, values...))
}

// NotIn adds a negated set membership condition. The list must not be
// empty.
func (b *Builder[T]) NotIn(field string, values ...any) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(values) == 0 {
		return b.fail("not_in on %q requires at least one value", field)
	}
	return b.addCondition(ast.NotIn(field, values...))
}

// IsNull adds an IS NULL condition.
func (b *Builder[T]) IsNull(field string) *Builder[T] {
	return b.addCondition(ast.IsNull(field))
}

// IsNotNull adds an IS NOT NULL condition.
func (b *Builder[T]) IsNotNull(field string) *Builder[T] {
	return b.addCondition(ast.IsNotNull(field))
}
