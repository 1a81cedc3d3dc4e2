package ast

// SortDirection orders results ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// NullOrdering places null values relative to non-null ones. The zero
// value leaves placement to the backend default.
type NullOrdering string

const (
	NullsDefault NullOrdering = ""
	NullsFirst   NullOrdering = "first"
	NullsLast    NullOrdering = "last"
)

// OrderBy is one ordering criterion. Criteria apply in slice order.
type OrderBy struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
	Nulls     NullOrdering  `json:"nulls,omitempty"`
}

// Pagination bounds the result window. Limit 0 means unbounded.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Projection restricts returned fields. All set means every field,
// regardless of Fields.
type Projection struct {
	Fields []string `json:"fields,omitempty"`
	All    bool     `json:"all,omitempty"`
}

// GroupBy lists the grouping fields.
type GroupBy struct {
	Fields []string `json:"fields"`
}

// AggregateKind names an aggregation function.
type AggregateKind string

const (
	AggregateCount         AggregateKind = "count"
	AggregateCountDistinct AggregateKind = "count_distinct"
	AggregateSum           AggregateKind = "sum"
	AggregateAvg           AggregateKind = "avg"
	AggregateMin           AggregateKind = "min"
	AggregateMax           AggregateKind = "max"
)

// Aggregation computes one value per group. Field may be empty only for
// plain count. Alias names the result column and must be unique.
type Aggregation struct {
	Kind  AggregateKind `json:"kind"`
	Field string        `json:"field,omitempty"`
	Alias string        `json:"alias"`
}

// HavingCondition filters groups by a previously aliased aggregate.
type HavingCondition struct {
	Alias string       `json:"alias"`
	Op    ComparisonOp `json:"op"`
	Value any          `json:"value"`
}

// CacheStrategy advises result caching aggressiveness.
type CacheStrategy string

const (
	CacheMinimal    CacheStrategy = "minimal"
	CacheModerate   CacheStrategy = "moderate"
	CacheAggressive CacheStrategy = "aggressive"
)

// PerformanceHints are advisory execution knobs derived from the
// requested depth or set explicitly. Executors may ignore them.
type PerformanceHints struct {
	MemoryFactor  float64       `json:"memory_factor"`
	SpeedFactor   float64       `json:"speed_factor"`
	CacheStrategy CacheStrategy `json:"cache_strategy"`
}

// Query is an immutable description of a retrieval. The type parameter
// names the element type rows decode into; it never influences the query
// shape. Instances come out of the builder fully owned: callers must not
// mutate the slices or pointers after Build returns one.
type Query[T any] struct {
	Conditions   []Condition
	Ordering     []OrderBy
	Projection   *Projection
	Pagination   *Pagination
	Grouping     *GroupBy
	Aggregations []Aggregation
	Having       *HavingCondition
	Depth        *Depth
	Hints        *PerformanceHints
}

// IsEmpty reports whether the query constrains nothing: no conditions,
// ordering, projection, pagination, grouping, aggregation or depth.
func (q Query[T]) IsEmpty() bool {
	return len(q.Conditions) == 0 &&
		len(q.Ordering) == 0 &&
		q.Projection == nil &&
		q.Pagination == nil &&
		q.Grouping == nil &&
		len(q.Aggregations) == 0 &&
		q.Having == nil &&
		q.Depth == nil &&
		q.Hints == nil
}
