package ast

import "fmt"

// ValidationIssue reports one defect found in a query. Location is a
// path into the query document, such as "conditions[0].children[1]" or
// "pagination.limit".
type ValidationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (v ValidationIssue) String() string {
	return v.Location + ": " + v.Message
}

// Validate checks the query against the structural invariants and
// returns every violation found. The builder upholds these invariants
// by construction; validation matters for trees assembled by hand or
// decoded from JSON. A nil result means the query is valid.
func (q Query[T]) Validate() []ValidationIssue {
	var issues []ValidationIssue
	add := func(location, format string, args ...any) {
		issues = append(issues, ValidationIssue{Location: location, Message: fmt.Sprintf(format, args...)})
	}

	for i, c := range q.Conditions {
		validateCondition(c, fmt.Sprintf("conditions[%d]", i), add)
	}

	for i, o := range q.Ordering {
		loc := fmt.Sprintf("ordering[%d]", i)
		if o.Field == "" {
			add(loc+".field", "ordering field must not be empty")
		}
		if o.Direction != Ascending && o.Direction != Descending {
			add(loc+".direction", "unknown sort direction %q", o.Direction)
		}
		if o.Nulls != NullsDefault && o.Nulls != NullsFirst && o.Nulls != NullsLast {
			add(loc+".nulls", "unknown null ordering %q", o.Nulls)
		}
	}

	if q.Projection != nil && !q.Projection.All {
		if len(q.Projection.Fields) == 0 {
			add("projection", "projection must list at least one field or include all")
		}
		seen := make(map[string]struct{})
		for i, f := range q.Projection.Fields {
			loc := fmt.Sprintf("projection.fields[%d]", i)
			if f == "" {
				add(loc, "projected field must not be empty")
				continue
			}
			if _, dup := seen[f]; dup {
				add(loc, "duplicate projected field %q", f)
			}
			seen[f] = struct{}{}
		}
	}

	if q.Pagination != nil {
		if q.Pagination.Limit < 0 {
			add("pagination.limit", "limit must be non-negative, got %d", q.Pagination.Limit)
		}
		if q.Pagination.Offset < 0 {
			add("pagination.offset", "offset must be non-negative, got %d", q.Pagination.Offset)
		}
	}

	if q.Grouping != nil {
		if len(q.Grouping.Fields) == 0 {
			add("grouping", "grouping must list at least one field")
		}
		for i, f := range q.Grouping.Fields {
			if f == "" {
				add(fmt.Sprintf("grouping.fields[%d]", i), "grouping field must not be empty")
			}
		}
	}

	aliases := make(map[string]struct{})
	for i, a := range q.Aggregations {
		loc := fmt.Sprintf("aggregations[%d]", i)
		switch a.Kind {
		case AggregateCount:
		case AggregateCountDistinct, AggregateSum, AggregateAvg, AggregateMin, AggregateMax:
			if a.Field == "" {
				add(loc+".field", "%s requires a field", a.Kind)
			}
		default:
			add(loc+".kind", "unknown aggregation kind %q", a.Kind)
		}
		if a.Alias == "" {
			add(loc+".alias", "aggregation requires an alias")
			continue
		}
		if _, dup := aliases[a.Alias]; dup {
			add(loc+".alias", "duplicate aggregation alias %q", a.Alias)
		}
		aliases[a.Alias] = struct{}{}
	}

	if q.Having != nil {
		if q.Having.Alias == "" {
			add("having.alias", "having requires an alias")
		} else if _, ok := aliases[q.Having.Alias]; !ok {
			add("having.alias", "having references %q which is not an aggregation alias", q.Having.Alias)
		}
		switch q.Having.Op {
		case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		default:
			add("having.op", "unknown comparison operator %q", q.Having.Op)
		}
	}

	if q.Depth != nil && !q.Depth.Valid() {
		add("depth", "unknown depth level %d", int(*q.Depth))
	}

	if q.Hints != nil {
		if q.Hints.MemoryFactor <= 0 {
			add("hints.memory_factor", "memory factor must be positive, got %g", q.Hints.MemoryFactor)
		}
		if q.Hints.SpeedFactor <= 0 {
			add("hints.speed_factor", "speed factor must be positive, got %g", q.Hints.SpeedFactor)
		}
		switch q.Hints.CacheStrategy {
		case CacheMinimal, CacheModerate, CacheAggressive:
		default:
			add("hints.cache_strategy", "unknown cache strategy %q", q.Hints.CacheStrategy)
		}
	}

	return issues
}

func validateCondition(c Condition, loc string, add func(location, format string, args ...any)) {
	switch n := c.(type) {
	case EqualityCondition:
		if n.Field == "" {
			add(loc+".field", "condition field must not be empty")
		}
		if n.Op != OpEqual && n.Op != OpNotEqual {
			add(loc+".op", "unknown equality operator %q", n.Op)
		}
	case ComparisonCondition:
		if n.Field == "" {
			add(loc+".field", "condition field must not be empty")
		}
		switch n.Op {
		case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		default:
			add(loc+".op", "unknown comparison operator %q", n.Op)
		}
	case PatternCondition:
		if n.Field == "" {
			add(loc+".field", "condition field must not be empty")
		}
		switch n.Op {
		case OpContains, OpStartsWith, OpEndsWith, OpMatches:
		default:
			add(loc+".op", "unknown pattern operator %q", n.Op)
		}
	case SetCondition:
		if n.Field == "" {
			add(loc+".field", "condition field must not be empty")
		}
		if n.Op != OpIn && n.Op != OpNotIn {
			add(loc+".op", "unknown set operator %q", n.Op)
		}
		if len(n.Values) == 0 {
			add(loc+".values", "%s requires at least one value", n.Op)
		}
	case NullCondition:
		if n.Field == "" {
			add(loc+".field", "condition field must not be empty")
		}
		if n.Op != OpIsNull && n.Op != OpIsNotNull {
			add(loc+".op", "unknown null operator %q", n.Op)
		}
	case CompositeCondition:
		switch n.Op {
		case OpAnd, OpOr:
			if len(n.Children) == 0 {
				add(loc, "%s requires at least one child", n.Op)
			}
		case OpNot:
			if len(n.Children) != 1 {
				add(loc, "not requires exactly one child, got %d", len(n.Children))
			}
		default:
			add(loc+".op", "unknown composite operator %q", n.Op)
		}
		for i, child := range n.Children {
			validateCondition(child, fmt.Sprintf("%s.children[%d]", loc, i), add)
		}
	default:
		add(loc, "unknown condition type %T", c)
	}
}
