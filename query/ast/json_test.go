package ast

import (
	"strings"
	"testing"

	"github.com/satishbabariya/querykit/query/qerr"
)

func TestConditionJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
	}{
		{"equality", Equal("age", float64(18))},
		{"comparison", Compare("score", OpLessOrEqual, 4.5)},
		{"pattern sensitive", Match("name", OpMatches, "^A.*", true)},
		{"pattern insensitive", Match("name", OpContains, "al", false)},
		{"set", In("dept", "eng", "ops")},
		{"null", IsNotNull("email")},
		{"composite", And(Equal("a", float64(1)), Not(Or(IsNull("b"), Equal("c", "x"))))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCondition(tt.cond)
			if err != nil {
				t.Fatalf("MarshalCondition() error = %v", err)
			}
			decoded, err := UnmarshalCondition(data)
			if err != nil {
				t.Fatalf("UnmarshalCondition() error = %v", err)
			}
			if !ConditionsEqual(tt.cond, decoded) {
				t.Errorf("round trip changed condition:\n  in:  %s\n  out: %s",
					RenderCondition(tt.cond), RenderCondition(decoded))
			}
		})
	}
}

func TestUnmarshalConditionRejectsUnknown(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind qerr.Kind
	}{
		{
			name: "unknown kind",
			doc:  `{"kind":"regex","field":"a","op":"matches","value":"x"}`,
			kind: qerr.KindInvalidOperator,
		},
		{
			name: "unknown equality op",
			doc:  `{"kind":"equality","field":"a","op":"==","value":1}`,
			kind: qerr.KindInvalidOperator,
		},
		{
			name: "unknown composite op",
			doc:  `{"kind":"composite","op":"xor","children":[]}`,
			kind: qerr.KindInvalidOperator,
		},
		{
			name: "malformed document",
			doc:  `{"kind":`,
			kind: qerr.KindInvalidSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCondition([]byte(tt.doc))
			if err == nil {
				t.Fatal("UnmarshalCondition() succeeded, want error")
			}
			if got := qerr.KindOf(err); got != tt.kind {
				t.Errorf("error kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestQueryJSONRoundTrip(t *testing.T) {
	depth := DepthDetailed
	original := Query[map[string]any]{
		Conditions: []Condition{
			And(Equal("dept", "eng"), Compare("age", OpGreaterThan, float64(30))),
		},
		Ordering:     []OrderBy{{Field: "name", Direction: Ascending, Nulls: NullsLast}},
		Projection:   &Projection{Fields: []string{"id", "name"}},
		Pagination:   &Pagination{Limit: 20, Offset: 40},
		Grouping:     &GroupBy{Fields: []string{"dept"}},
		Aggregations: []Aggregation{{Kind: AggregateCount, Alias: "total"}},
		Having:       &HavingCondition{Alias: "total", Op: OpGreaterThan, Value: float64(5)},
		Depth:        &depth,
		Hints:        &PerformanceHints{MemoryFactor: 0.7, SpeedFactor: 1.5, CacheStrategy: CacheModerate},
	}

	data, err := original.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"depth":"detailed"`) {
		t.Errorf("depth not serialized by name: %s", data)
	}

	var decoded Query[map[string]any]
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if !original.Equal(decoded) {
		t.Errorf("round trip changed query:\n  in:  %s\n  out: %s", original.String(), decoded.String())
	}
}

func TestQueryJSONRejectsBadDepth(t *testing.T) {
	var q Query[map[string]any]
	err := q.UnmarshalJSON([]byte(`{"depth":"bottomless"}`))
	if err == nil {
		t.Fatal("UnmarshalJSON() succeeded, want error")
	}
	if got := qerr.KindOf(err); got != qerr.KindInvalidValue {
		t.Errorf("error kind = %q, want %q", got, qerr.KindInvalidValue)
	}
}
