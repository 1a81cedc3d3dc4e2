package ast

import (
	"testing"
)

func TestConstructorsCopyInputs(t *testing.T) {
	values := []any{"a", "b"}
	c := In("dept", values...)
	values[0] = "mutated"

	set, ok := c.(SetCondition)
	if !ok {
		t.Fatalf("In returned %T, want SetCondition", c)
	}
	if set.Values[0] != "a" {
		t.Errorf("In shared caller slice: Values[0] = %v, want a", set.Values[0])
	}

	children := []Condition{Equal("a", 1), Equal("b", 2)}
	composite := And(children...)
	children[0] = Equal("x", 9)

	and, ok := composite.(CompositeCondition)
	if !ok {
		t.Fatalf("And returned %T, want CompositeCondition", composite)
	}
	if !ConditionsEqual(and.Children[0], Equal("a", 1)) {
		t.Error("And shared caller slice")
	}
}

func TestCloneConditionIsDeep(t *testing.T) {
	original := And(
		In("status", "active", "pending"),
		Not(Equal("deleted", true)),
	)
	clone := CloneCondition(original)

	set := original.(CompositeCondition).Children[0].(SetCondition)
	set.Values[0] = "mutated"

	clonedSet := clone.(CompositeCondition).Children[0].(SetCondition)
	if clonedSet.Values[0] != "active" {
		t.Errorf("clone shares values slice: got %v, want active", clonedSet.Values[0])
	}
	if !ConditionsEqual(clone.(CompositeCondition).Children[1], Not(Equal("deleted", true))) {
		t.Error("clone lost nested child")
	}
}

func TestQueryCloneIsDeep(t *testing.T) {
	depth := DepthSemantic
	q := Query[map[string]any]{
		Conditions: []Condition{Equal("dept", "eng")},
		Ordering:   []OrderBy{{Field: "name", Direction: Ascending}},
		Projection: &Projection{Fields: []string{"id", "name"}},
		Pagination: &Pagination{Limit: 10, Offset: 5},
		Depth:      &depth,
	}
	clone := q.Clone()

	q.Projection.Fields[0] = "mutated"
	q.Ordering[0].Field = "mutated"
	*q.Pagination = Pagination{Limit: 99}
	*q.Depth = DepthHistorical

	if clone.Projection.Fields[0] != "id" {
		t.Error("clone shares projection fields")
	}
	if clone.Ordering[0].Field != "name" {
		t.Error("clone shares ordering slice")
	}
	if clone.Pagination.Limit != 10 || clone.Pagination.Offset != 5 {
		t.Error("clone shares pagination")
	}
	if *clone.Depth != DepthSemantic {
		t.Error("clone shares depth")
	}
}

func TestConditionsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Condition
		want bool
	}{
		{
			name: "identical equality",
			a:    Equal("age", 18),
			b:    Equal("age", 18),
			want: true,
		},
		{
			name: "different operator",
			a:    Equal("age", 18),
			b:    NotEqual("age", 18),
			want: false,
		},
		{
			name: "different kind",
			a:    Equal("age", 18),
			b:    Compare("age", OpGreaterThan, 18),
			want: false,
		},
		{
			name: "set order matters",
			a:    In("dept", "a", "b"),
			b:    In("dept", "b", "a"),
			want: false,
		},
		{
			name: "nested composite",
			a:    And(Equal("a", 1), Or(Equal("b", 2), IsNull("c"))),
			b:    And(Equal("a", 1), Or(Equal("b", 2), IsNull("c"))),
			want: true,
		},
		{
			name: "pattern case flag",
			a:    Match("name", OpContains, "bob", true),
			b:    Match("name", OpContains, "bob", false),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConditionsEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ConditionsEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferencedFields(t *testing.T) {
	q := Query[map[string]any]{
		Conditions: []Condition{
			And(Equal("dept", "eng"), Compare("age", OpGreaterThan, 30)),
			IsNotNull("email"),
		},
		Ordering:     []OrderBy{{Field: "age", Direction: Descending}, {Field: "name", Direction: Ascending}},
		Projection:   &Projection{Fields: []string{"id", "name"}},
		Grouping:     &GroupBy{Fields: []string{"dept"}},
		Aggregations: []Aggregation{{Kind: AggregateSum, Field: "salary", Alias: "total"}},
	}

	got := q.ReferencedFields()
	want := []string{"dept", "age", "email", "name", "id", "salary"}
	if len(got) != len(want) {
		t.Fatalf("ReferencedFields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReferencedFields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderCondition(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
		want string
	}{
		{
			name: "equality string",
			cond: Equal("name", "bob"),
			want: `name = "bob"`,
		},
		{
			name: "inequality number",
			cond: NotEqual("age", 18),
			want: "age != 18",
		},
		{
			name: "comparison",
			cond: Compare("score", OpGreaterOrEqual, 4.5),
			want: "score >= 4.5",
		},
		{
			name: "case sensitive pattern",
			cond: Match("name", OpStartsWith, "Al", true),
			want: `name starts_with "Al"`,
		},
		{
			name: "case insensitive pattern",
			cond: Match("name", OpContains, "al", false),
			want: `name contains~ "al"`,
		},
		{
			name: "set membership",
			cond: In("dept", "eng", "ops"),
			want: `dept in ["eng", "ops"]`,
		},
		{
			name: "null test",
			cond: IsNull("email"),
			want: "email is null",
		},
		{
			name: "not null test",
			cond: IsNotNull("email"),
			want: "email is not null",
		},
		{
			name: "nested composite",
			cond: And(Equal("a", 1), Or(Equal("b", 2), Equal("c", 3))),
			want: "(a = 1 AND (b = 2 OR c = 3))",
		},
		{
			name: "negation",
			cond: Not(Compare("age", OpLessThan, 18)),
			want: "NOT (age < 18)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderCondition(tt.cond); got != tt.want {
				t.Errorf("RenderCondition() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryString(t *testing.T) {
	q := Query[map[string]any]{
		Conditions: []Condition{Equal("dept", "eng"), Compare("age", OpGreaterOrEqual, 30)},
		Ordering: []OrderBy{
			{Field: "name", Direction: Ascending},
			{Field: "age", Direction: Descending, Nulls: NullsLast},
		},
		Projection: &Projection{Fields: []string{"id", "name"}},
		Pagination: &Pagination{Limit: 10, Offset: 5},
	}

	want := `select id, name; where dept = "eng" AND age >= 30; order by name asc, age desc nulls last; limit 10 offset 5`
	if got := q.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	empty := Query[map[string]any]{}
	if got := empty.String(); got != "match all" {
		t.Errorf("empty String() = %q, want match all", got)
	}
	if !empty.IsEmpty() {
		t.Error("IsEmpty() = false for zero query")
	}
}

func TestDepthFieldsAndHints(t *testing.T) {
	if fields := DepthSignature.Fields(); len(fields) != 3 {
		t.Errorf("signature fields = %v, want 3 entries", fields)
	}
	if fields := DepthHistorical.Fields(); fields != nil {
		t.Errorf("historical fields = %v, want nil (all fields)", fields)
	}

	prev := 0.0
	for _, d := range []Depth{DepthSignature, DepthStructure, DepthSemantic, DepthDetailed, DepthHistorical} {
		h := d.Hints()
		if h.MemoryFactor <= prev {
			t.Errorf("%s memory factor %g not increasing past %g", d, h.MemoryFactor, prev)
		}
		prev = h.MemoryFactor
	}

	if d, ok := ParseDepth("semantic"); !ok || d != DepthSemantic {
		t.Errorf("ParseDepth(semantic) = %v, %v", d, ok)
	}
	if _, ok := ParseDepth("bogus"); ok {
		t.Error("ParseDepth(bogus) succeeded")
	}
}
