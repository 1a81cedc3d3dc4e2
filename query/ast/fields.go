package ast

// ConditionFields collects every field name referenced by the condition
// tree, in first-seen order without duplicates.
func ConditionFields(c Condition) []string {
	seen := make(map[string]struct{})
	var out []string
	collectConditionFields(c, seen, &out)
	return out
}

func collectConditionFields(c Condition, seen map[string]struct{}, out *[]string) {
	add := func(field string) {
		if _, ok := seen[field]; ok {
			return
		}
		seen[field] = struct{}{}
		*out = append(*out, field)
	}
	switch n := c.(type) {
	case EqualityCondition:
		add(n.Field)
	case ComparisonCondition:
		add(n.Field)
	case PatternCondition:
		add(n.Field)
	case SetCondition:
		add(n.Field)
	case NullCondition:
		add(n.Field)
	case CompositeCondition:
		for _, child := range n.Children {
			collectConditionFields(child, seen, out)
		}
	}
}

// ReferencedFields collects every field name the query touches across
// conditions, ordering, projection, grouping and aggregations, in
// first-seen order without duplicates. Aggregation aliases are not
// fields and are excluded.
func (q Query[T]) ReferencedFields() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(field string) {
		if field == "" {
			return
		}
		if _, ok := seen[field]; ok {
			return
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}

	for _, c := range q.Conditions {
		for _, f := range ConditionFields(c) {
			add(f)
		}
	}
	for _, o := range q.Ordering {
		add(o.Field)
	}
	if q.Projection != nil && !q.Projection.All {
		for _, f := range q.Projection.Fields {
			add(f)
		}
	}
	if q.Grouping != nil {
		for _, f := range q.Grouping.Fields {
			add(f)
		}
	}
	for _, a := range q.Aggregations {
		add(a.Field)
	}
	return out
}
