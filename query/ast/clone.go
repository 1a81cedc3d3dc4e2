package ast

// CloneCondition returns a deep copy of c. Scalar values are shared by
// assignment; slices are duplicated so mutation of one tree never shows
// through the other.
func CloneCondition(c Condition) Condition {
	switch n := c.(type) {
	case EqualityCondition:
		return n
	case ComparisonCondition:
		return n
	case PatternCondition:
		return n
	case SetCondition:
		vals := make([]any, len(n.Values))
		copy(vals, n.Values)
		return SetCondition{Field: n.Field, Op: n.Op, Values: vals}
	case NullCondition:
		return n
	case CompositeCondition:
		children := make([]Condition, len(n.Children))
		for i, child := range n.Children {
			children[i] = CloneCondition(child)
		}
		return CompositeCondition{Op: n.Op, Children: children}
	default:
		return c
	}
}

// CloneConditions deep-copies a condition slice.
func CloneConditions(conditions []Condition) []Condition {
	if conditions == nil {
		return nil
	}
	cp := make([]Condition, len(conditions))
	for i, c := range conditions {
		cp[i] = CloneCondition(c)
	}
	return cp
}

// Clone returns a deep copy of the query, safe to extend without
// affecting the receiver.
func (q Query[T]) Clone() Query[T] {
	out := Query[T]{
		Conditions: CloneConditions(q.Conditions),
	}
	if q.Ordering != nil {
		out.Ordering = make([]OrderBy, len(q.Ordering))
		copy(out.Ordering, q.Ordering)
	}
	if q.Projection != nil {
		p := Projection{All: q.Projection.All}
		if q.Projection.Fields != nil {
			p.Fields = make([]string, len(q.Projection.Fields))
			copy(p.Fields, q.Projection.Fields)
		}
		out.Projection = &p
	}
	if q.Pagination != nil {
		p := *q.Pagination
		out.Pagination = &p
	}
	if q.Grouping != nil {
		g := GroupBy{Fields: make([]string, len(q.Grouping.Fields))}
		copy(g.Fields, q.Grouping.Fields)
		out.Grouping = &g
	}
	if q.Aggregations != nil {
		out.Aggregations = make([]Aggregation, len(q.Aggregations))
		copy(out.Aggregations, q.Aggregations)
	}
	if q.Having != nil {
		h := *q.Having
		out.Having = &h
	}
	if q.Depth != nil {
		d := *q.Depth
		out.Depth = &d
	}
	if q.Hints != nil {
		h := *q.Hints
		out.Hints = &h
	}
	return out
}
