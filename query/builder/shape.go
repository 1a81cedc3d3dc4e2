package builder

import "github.com/satishbabariya/querykit/query/ast"

// OrderBy appends an ordering criterion. Criteria apply in call order.
func (b *Builder[T]) OrderBy(field string, direction ast.SortDirection) *Builder[T] {
	return b.OrderByNulls(field, direction, ast.NullsDefault)
}

// OrderByNulls appends an ordering criterion with explicit null placement.
func (b *Builder[T]) OrderByNulls(field string, direction ast.SortDirection, nulls ast.NullOrdering) *Builder[T] {
	if b.err != nil {
		return b
	}
	cp := b.clone()
	cp.ordering = append(cp.ordering, ast.OrderBy{Field: field, Direction: direction, Nulls: nulls})
	return cp
}

// Limit caps the number of returned rows. Zero means unbounded.
func (b *Builder[T]) Limit(n int) *Builder[T] {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.fail("limit must be non-negative, got %d", n)
	}
	cp := b.clone()
	if cp.pagination == nil {
		cp.pagination = &ast.Pagination{}
	}
	cp.pagination.Limit = n
	return cp
}

// Offset skips the first n rows.
func (b *Builder[T]) Offset(n int) *Builder[T] {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.fail("offset must be non-negative, got %d", n)
	}
	cp := b.clone()
	if cp.pagination == nil {
		cp.pagination = &ast.Pagination{}
	}
	cp.pagination.Offset = n
	return cp
}

// Paginate sets limit and offset together.
func (b *Builder[T]) Paginate(limit, offset int) *Builder[T] {
	return b.Limit(limit).Offset(offset)
}

// Select restricts the returned fields. At least one field is required;
// the last Select/SelectAll/WithDepth call wins.
func (b *Builder[T]) Select(fields ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(fields) == 0 {
		return b.fail("select requires at least one field")
	}
	cp := b.clone()
	fs := make([]string, len(fields))
	copy(fs, fields)
	cp.projection = &ast.Projection{Fields: fs}
	return cp
}

// SelectAll requests every field explicitly.
func (b *Builder[T]) SelectAll() *Builder[T] {
	if b.err != nil {
		return b
	}
	cp := b.clone()
	cp.projection = &ast.Projection{All: true}
	return cp
}

// GroupBy sets the grouping fields. At least one field is required.
func (b *Builder[T]) GroupBy(fields ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(fields) == 0 {
		return b.fail("groupBy requires at least one field")
	}
	cp := b.clone()
	fs := make([]string, len(fields))
	copy(fs, fields)
	cp.grouping = &ast.GroupBy{Fields: fs}
	return cp
}

func (b *Builder[T]) addAggregation(a ast.Aggregation) *Builder[T] {
	if b.err != nil {
		return b
	}
	cp := b.clone()
	cp.aggregations = append(cp.aggregations, a)
	return cp
}

// Count adds a COUNT(*) aggregation under the given alias.
func (b *Builder[T]) Count(alias string) *Builder[T] {
	return b.addAggregation(ast.Aggregation{Kind: ast.AggregateCount, Alias: alias})
}

// CountDistinct adds a COUNT(DISTINCT field) aggregation.
func (b *Builder[T]) CountDistinct(field, alias string) *Builder[T] {
	return b.addAggregation(ast.Aggregation{Kind: ast.AggregateCountDistinct, Field: field, Alias: alias})
}

// Sum adds a SUM aggregation.
func (b *Builder[T]) Sum(field, alias string) *Builder[T] {
	return b.addAggregation(ast.Aggregation{Kind: ast.AggregateSum, Field: field, Alias: alias})
}

// Avg adds an AVG aggregation.
func (b *Builder[T]) Avg(field, alias string) *Builder[T] {
	return b.addAggregation(ast.Aggregation{Kind: ast.AggregateAvg, Field: field, Alias: alias})
}

// Min adds a MIN aggregation.
func (b *Builder[T]) Min(field, alias string) *Builder[T] {
	return b.addAggregation(ast.Aggregation{Kind: ast.AggregateMin, Field: field, Alias: alias})
}

// Max adds a MAX aggregation.
func (b *Builder[T]) Max(field, alias string) *Builder[T] {
	return b.addAggregation(ast.Aggregation{Kind: ast.AggregateMax, Field: field, Alias: alias})
}

// Having filters groups by a previously aliased aggregate.
func (b *Builder[T]) Having(alias string, op ast.ComparisonOp, value any) *Builder[T] {
	if b.err != nil {
		return b
	}
	cp := b.clone()
	cp.having = &ast.HavingCondition{Alias: alias, Op: op, Value: value}
	return cp
}

// WithDepth applies a loading depth: it records the level, derives the
// matching projection and attaches advisory performance hints. A later
// Select call overrides the derived projection.
func (b *Builder[T]) WithDepth(d ast.Depth) *Builder[T] {
	if b.err != nil {
		return b
	}
	if !d.Valid() {
		return b.fail("unknown depth level %d", int(d))
	}
	cp := b.clone()
	depth := d
	cp.depth = &depth
	if fields := d.Fields(); fields != nil {
		cp.projection = &ast.Projection{Fields: fields}
	} else {
		cp.projection = &ast.Projection{All: true}
	}
	hints := d.Hints()
	cp.hints = &hints
	return cp
}
