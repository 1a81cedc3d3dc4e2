package ast

import "reflect"

// ConditionsEqual reports structural equality of two condition trees.
// Values compare with reflect.DeepEqual, so 1 and int64(1) differ.
func ConditionsEqual(a, b Condition) bool {
	switch an := a.(type) {
	case EqualityCondition:
		bn, ok := b.(EqualityCondition)
		return ok && an.Field == bn.Field && an.Op == bn.Op && reflect.DeepEqual(an.Value, bn.Value)
	case ComparisonCondition:
		bn, ok := b.(ComparisonCondition)
		return ok && an.Field == bn.Field && an.Op == bn.Op && reflect.DeepEqual(an.Value, bn.Value)
	case PatternCondition:
		bn, ok := b.(PatternCondition)
		return ok && an == bn
	case SetCondition:
		bn, ok := b.(SetCondition)
		if !ok || an.Field != bn.Field || an.Op != bn.Op || len(an.Values) != len(bn.Values) {
			return false
		}
		for i := range an.Values {
			if !reflect.DeepEqual(an.Values[i], bn.Values[i]) {
				return false
			}
		}
		return true
	case NullCondition:
		bn, ok := b.(NullCondition)
		return ok && an == bn
	case CompositeCondition:
		bn, ok := b.(CompositeCondition)
		if !ok || an.Op != bn.Op || len(an.Children) != len(bn.Children) {
			return false
		}
		for i := range an.Children {
			if !ConditionsEqual(an.Children[i], bn.Children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ConditionSlicesEqual reports element-wise structural equality of two
// condition slices.
func ConditionSlicesEqual(a, b []Condition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ConditionsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two queries: same conditions in
// the same order, same ordering, projection, pagination, grouping,
// aggregations, having, depth and hints.
func (q Query[T]) Equal(other Query[T]) bool {
	if !ConditionSlicesEqual(q.Conditions, other.Conditions) {
		return false
	}
	if len(q.Ordering) != len(other.Ordering) {
		return false
	}
	for i := range q.Ordering {
		if q.Ordering[i] != other.Ordering[i] {
			return false
		}
	}
	if (q.Projection == nil) != (other.Projection == nil) {
		return false
	}
	if q.Projection != nil {
		if q.Projection.All != other.Projection.All || len(q.Projection.Fields) != len(other.Projection.Fields) {
			return false
		}
		for i := range q.Projection.Fields {
			if q.Projection.Fields[i] != other.Projection.Fields[i] {
				return false
			}
		}
	}
	if (q.Pagination == nil) != (other.Pagination == nil) {
		return false
	}
	if q.Pagination != nil && *q.Pagination != *other.Pagination {
		return false
	}
	if (q.Grouping == nil) != (other.Grouping == nil) {
		return false
	}
	if q.Grouping != nil {
		if len(q.Grouping.Fields) != len(other.Grouping.Fields) {
			return false
		}
		for i := range q.Grouping.Fields {
			if q.Grouping.Fields[i] != other.Grouping.Fields[i] {
				return false
			}
		}
	}
	if len(q.Aggregations) != len(other.Aggregations) {
		return false
	}
	for i := range q.Aggregations {
		if q.Aggregations[i] != other.Aggregations[i] {
			return false
		}
	}
	if (q.Having == nil) != (other.Having == nil) {
		return false
	}
	if q.Having != nil {
		if q.Having.Alias != other.Having.Alias || q.Having.Op != other.Having.Op ||
			!reflect.DeepEqual(q.Having.Value, other.Having.Value) {
			return false
		}
	}
	if (q.Depth == nil) != (other.Depth == nil) {
		return false
	}
	if q.Depth != nil && *q.Depth != *other.Depth {
		return false
	}
	if (q.Hints == nil) != (other.Hints == nil) {
		return false
	}
	if q.Hints != nil && *q.Hints != *other.Hints {
		return false
	}
	return true
}
