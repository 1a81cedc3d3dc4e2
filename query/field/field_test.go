package field

import (
	"testing"
	"time"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/builder"
)

func TestStringConditions(t *testing.T) {
	name := NewString("name")

	cases := []struct {
		label string
		got   ast.Condition
		want  ast.Condition
	}{
		{"EQ", name.EQ("alice"), ast.Equal("name", "alice")},
		{"NEQ", name.NEQ("alice"), ast.NotEqual("name", "alice")},
		{"Contains", name.Contains("li"), ast.Match("name", ast.OpContains, "li", true)},
		{"ContainsFold", name.ContainsFold("LI"), ast.Match("name", ast.OpContains, "LI", false)},
		{"StartsWith", name.StartsWith("al"), ast.Match("name", ast.OpStartsWith, "al", true)},
		{"EndsWith", name.EndsWith("ce"), ast.Match("name", ast.OpEndsWith, "ce", true)},
		{"Matches", name.Matches("^a.*e$"), ast.Match("name", ast.OpMatches, "^a.*e$", true)},
		{"In", name.In("alice", "bob"), ast.In("name", "alice", "bob")},
		{"NotIn", name.NotIn("carol"), ast.NotIn("name", "carol")},
		{"IsNull", name.IsNull(), ast.IsNull("name")},
		{"IsNotNull", name.IsNotNull(), ast.IsNotNull("name")},
	}
	for _, tc := range cases {
		if !ast.ConditionsEqual(tc.got, tc.want) {
			t.Errorf("%s: got %#v, want %#v", tc.label, tc.got, tc.want)
		}
	}
}

func TestNumberConditions(t *testing.T) {
	salary := NewNumber[int]("salary")

	cases := []struct {
		label string
		got   ast.Condition
		want  ast.Condition
	}{
		{"EQ", salary.EQ(100), ast.Equal("salary", 100)},
		{"NEQ", salary.NEQ(100), ast.NotEqual("salary", 100)},
		{"GT", salary.GT(100), ast.Compare("salary", ast.OpGreaterThan, 100)},
		{"GTE", salary.GTE(100), ast.Compare("salary", ast.OpGreaterOrEqual, 100)},
		{"LT", salary.LT(100), ast.Compare("salary", ast.OpLessThan, 100)},
		{"LTE", salary.LTE(100), ast.Compare("salary", ast.OpLessOrEqual, 100)},
		{"In", salary.In(1, 2, 3), ast.In("salary", 1, 2, 3)},
		{"NotIn", salary.NotIn(4), ast.NotIn("salary", 4)},
		{"IsNull", salary.IsNull(), ast.IsNull("salary")},
		{"IsNotNull", salary.IsNotNull(), ast.IsNotNull("salary")},
		{
			"Between",
			salary.Between(50, 150),
			ast.And(
				ast.Compare("salary", ast.OpGreaterOrEqual, 50),
				ast.Compare("salary", ast.OpLessOrEqual, 150),
			),
		},
	}
	for _, tc := range cases {
		if !ast.ConditionsEqual(tc.got, tc.want) {
			t.Errorf("%s: got %#v, want %#v", tc.label, tc.got, tc.want)
		}
	}
}

func TestNumberFloat(t *testing.T) {
	score := NewNumber[float64]("score")
	if !ast.ConditionsEqual(score.GT(0.5), ast.Compare("score", ast.OpGreaterThan, 0.5)) {
		t.Error("float GT condition mismatch")
	}
}

func TestBoolConditions(t *testing.T) {
	active := NewBool("active")

	if !ast.ConditionsEqual(active.EQ(false), ast.Equal("active", false)) {
		t.Error("EQ condition mismatch")
	}
	if !ast.ConditionsEqual(active.IsTrue(), ast.Equal("active", true)) {
		t.Error("IsTrue condition mismatch")
	}
	if !ast.ConditionsEqual(active.IsFalse(), ast.Equal("active", false)) {
		t.Error("IsFalse condition mismatch")
	}
}

func TestTimeConditions(t *testing.T) {
	created := NewTime("created_at")
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		label string
		got   ast.Condition
		want  ast.Condition
	}{
		{"EQ", created.EQ(at), ast.Equal("created_at", at)},
		{"Before", created.Before(at), ast.Compare("created_at", ast.OpLessThan, at)},
		{"After", created.After(at), ast.Compare("created_at", ast.OpGreaterThan, at)},
		{"OnOrBefore", created.OnOrBefore(at), ast.Compare("created_at", ast.OpLessOrEqual, at)},
		{"OnOrAfter", created.OnOrAfter(at), ast.Compare("created_at", ast.OpGreaterOrEqual, at)},
		{"IsNull", created.IsNull(), ast.IsNull("created_at")},
	}
	for _, tc := range cases {
		if !ast.ConditionsEqual(tc.got, tc.want) {
			t.Errorf("%s: got %#v, want %#v", tc.label, tc.got, tc.want)
		}
	}
}

func TestFieldName(t *testing.T) {
	if got := NewString("dept").Name(); got != "dept" {
		t.Errorf("Name() = %q, want %q", got, "dept")
	}
	if got := NewNumber[int64]("salary").Name(); got != "salary" {
		t.Errorf("Name() = %q, want %q", got, "salary")
	}
}

func TestFieldsComposeWithBuilder(t *testing.T) {
	dept := NewString("dept")
	salary := NewNumber[int]("salary")

	q, err := builder.New[map[string]any]().
		Where(ast.Or(dept.EQ("eng"), dept.EQ("ops"))).
		Where(salary.GTE(100000)).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(q.Conditions) != 2 {
		t.Fatalf("len(Conditions) = %d, want 2", len(q.Conditions))
	}
	want := ast.Or(ast.Equal("dept", "eng"), ast.Equal("dept", "ops"))
	if !ast.ConditionsEqual(q.Conditions[0], want) {
		t.Errorf("Conditions[0] = %#v, want %#v", q.Conditions[0], want)
	}
}
