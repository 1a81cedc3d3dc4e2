package sqlgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
)

type record = map[string]any

func TestTranslateRenderings(t *testing.T) {
	tests := []struct {
		name     string
		query    ast.Query[record]
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty query",
			query:   ast.Query[record]{},
			wantSQL: "SELECT * FROM t",
		},
		{
			name: "pagination renders literally",
			query: ast.Query[record]{
				Pagination: &ast.Pagination{Limit: 10, Offset: 5},
			},
			wantSQL: "SELECT * FROM t LIMIT 10 OFFSET 5",
		},
		{
			name: "count with group by",
			query: ast.Query[record]{
				Grouping:     &ast.GroupBy{Fields: []string{"dept"}},
				Aggregations: []ast.Aggregation{{Kind: ast.AggregateCount, Alias: "total"}},
			},
			wantSQL: "SELECT dept, COUNT(*) AS total FROM t GROUP BY dept",
		},
		{
			name: "equality",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Equal("dept", "eng")},
			},
			wantSQL:  "SELECT * FROM t WHERE dept = ?",
			wantArgs: []any{"eng"},
		},
		{
			name: "not equal",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.NotEqual("dept", "eng")},
			},
			wantSQL:  "SELECT * FROM t WHERE dept != ?",
			wantArgs: []any{"eng"},
		},
		{
			name: "comparison",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Compare("age", ast.OpGreaterOrEqual, 30)},
			},
			wantSQL:  "SELECT * FROM t WHERE age >= ?",
			wantArgs: []any{30},
		},
		{
			name: "contains wraps both sides",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Match("name", ast.OpContains, "smi", true)},
			},
			wantSQL:  "SELECT * FROM t WHERE name LIKE ?",
			wantArgs: []any{"%smi%"},
		},
		{
			name: "starts with wraps right",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Match("name", ast.OpStartsWith, "smi", true)},
			},
			wantSQL:  "SELECT * FROM t WHERE name LIKE ?",
			wantArgs: []any{"smi%"},
		},
		{
			name: "ends with wraps left",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Match("name", ast.OpEndsWith, "smi", true)},
			},
			wantSQL:  "SELECT * FROM t WHERE name LIKE ?",
			wantArgs: []any{"%smi"},
		},
		{
			name: "regex match",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Match("name", ast.OpMatches, "^S.*h$", true)},
			},
			wantSQL:  "SELECT * FROM t WHERE name REGEXP ?",
			wantArgs: []any{"^S.*h$"},
		},
		{
			name: "case insensitive lowers field and literal",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Match("name", ast.OpContains, "SMI", false)},
			},
			wantSQL:  "SELECT * FROM t WHERE LOWER(name) LIKE ?",
			wantArgs: []any{"%smi%"},
		},
		{
			name: "set membership",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.In("dept", "eng", "ops")},
			},
			wantSQL:  "SELECT * FROM t WHERE dept IN (?, ?)",
			wantArgs: []any{"eng", "ops"},
		},
		{
			name: "negated set membership",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.NotIn("status", "disabled", "banned")},
			},
			wantSQL:  "SELECT * FROM t WHERE status NOT IN (?, ?)",
			wantArgs: []any{"disabled", "banned"},
		},
		{
			name: "null tests bind nothing",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.IsNull("email"), ast.IsNotNull("phone")},
			},
			wantSQL: "SELECT * FROM t WHERE email IS NULL AND phone IS NOT NULL",
		},
		{
			name: "nested composite",
			query: ast.Query[record]{
				Conditions: []ast.Condition{
					ast.And(
						ast.Equal("dept", "eng"),
						ast.Or(ast.Compare("age", ast.OpGreaterThan, 40), ast.IsNull("manager_id")),
					),
				},
			},
			wantSQL:  "SELECT * FROM t WHERE (dept = ? AND (age > ? OR manager_id IS NULL))",
			wantArgs: []any{"eng", 40},
		},
		{
			name: "negation wraps child",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Not(ast.Equal("archived", true))},
			},
			wantSQL:  "SELECT * FROM t WHERE NOT (archived = ?)",
			wantArgs: []any{true},
		},
		{
			name: "projection",
			query: ast.Query[record]{
				Projection: &ast.Projection{Fields: []string{"id", "name"}},
			},
			wantSQL: "SELECT id, name FROM t",
		},
		{
			name: "include all projection",
			query: ast.Query[record]{
				Projection: &ast.Projection{All: true},
			},
			wantSQL: "SELECT * FROM t",
		},
		{
			name: "ordering with nulls placement",
			query: ast.Query[record]{
				Ordering: []ast.OrderBy{
					{Field: "age", Direction: ast.Descending, Nulls: ast.NullsLast},
					{Field: "name", Direction: ast.Ascending},
				},
			},
			wantSQL: "SELECT * FROM t ORDER BY age DESC NULLS LAST, name ASC",
		},
		{
			name: "offset without limit",
			query: ast.Query[record]{
				Pagination: &ast.Pagination{Offset: 5},
			},
			wantSQL: "SELECT * FROM t LIMIT -1 OFFSET 5",
		},
		{
			name: "limit without offset",
			query: ast.Query[record]{
				Pagination: &ast.Pagination{Limit: 10},
			},
			wantSQL: "SELECT * FROM t LIMIT 10",
		},
		{
			name: "having value is parameterized",
			query: ast.Query[record]{
				Grouping:     &ast.GroupBy{Fields: []string{"dept"}},
				Aggregations: []ast.Aggregation{{Kind: ast.AggregateCount, Alias: "total"}},
				Having:       &ast.HavingCondition{Alias: "total", Op: ast.OpGreaterThan, Value: 5},
			},
			wantSQL:  "SELECT dept, COUNT(*) AS total FROM t GROUP BY dept HAVING total > ?",
			wantArgs: []any{5},
		},
		{
			name: "all aggregate kinds",
			query: ast.Query[record]{
				Grouping: &ast.GroupBy{Fields: []string{"dept"}},
				Aggregations: []ast.Aggregation{
					{Kind: ast.AggregateCountDistinct, Field: "title", Alias: "titles"},
					{Kind: ast.AggregateSum, Field: "salary", Alias: "payroll"},
					{Kind: ast.AggregateAvg, Field: "salary", Alias: "avg_salary"},
					{Kind: ast.AggregateMin, Field: "age", Alias: "youngest"},
					{Kind: ast.AggregateMax, Field: "age", Alias: "oldest"},
				},
			},
			wantSQL: "SELECT dept, COUNT(DISTINCT title) AS titles, SUM(salary) AS payroll, " +
				"AVG(salary) AS avg_salary, MIN(age) AS youngest, MAX(age) AS oldest FROM t GROUP BY dept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Translate(tt.query, "t")
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if stmt.SQL != tt.wantSQL {
				t.Errorf("SQL = %q\n  want %q", stmt.SQL, tt.wantSQL)
			}
			if len(stmt.Args) != len(tt.wantArgs) {
				t.Fatalf("Args = %v, want %v", stmt.Args, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if stmt.Args[i] != tt.wantArgs[i] {
					t.Errorf("Args[%d] = %#v, want %#v", i, stmt.Args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestTranslateDollarPlaceholders(t *testing.T) {
	q := ast.Query[record]{
		Conditions: []ast.Condition{
			ast.Equal("dept", "eng"),
			ast.In("status", "a", "b"),
		},
		Grouping:     &ast.GroupBy{Fields: []string{"dept"}},
		Aggregations: []ast.Aggregation{{Kind: ast.AggregateCount, Alias: "n"}},
		Having:       &ast.HavingCondition{Alias: "n", Op: ast.OpGreaterThan, Value: 2},
	}

	stmt, err := TranslateWith(q, "t", Options{Placeholder: Dollar})
	if err != nil {
		t.Fatalf("TranslateWith() error = %v", err)
	}
	want := "SELECT dept, COUNT(*) AS n FROM t WHERE dept = $1 AND status IN ($2, $3) GROUP BY dept HAVING n > $4"
	if stmt.SQL != want {
		t.Errorf("SQL = %q\n  want %q", stmt.SQL, want)
	}
	if len(stmt.Args) != 4 {
		t.Errorf("len(Args) = %d, want 4", len(stmt.Args))
	}
}

func TestInjectionStaysInParameters(t *testing.T) {
	hostile := []string{
		"'; DROP TABLE users; --",
		"1 OR 1=1",
		`" UNION SELECT password FROM auth --`,
	}

	for _, value := range hostile {
		q := ast.Query[record]{
			Conditions: []ast.Condition{
				ast.Equal("name", value),
				ast.Match("bio", ast.OpContains, value, true),
				ast.In("alias", value, "other"),
			},
		}
		stmt, err := Translate(q, "users")
		if err != nil {
			t.Fatalf("Translate() error = %v", err)
		}

		for _, marker := range []string{"DROP", "UNION", "1=1", "'", "--"} {
			if strings.Contains(stmt.SQL, marker) {
				t.Errorf("hostile fragment %q leaked into SQL: %s", marker, stmt.SQL)
			}
		}
		if got := strings.Count(stmt.SQL, "?"); got != len(stmt.Args) {
			t.Errorf("placeholder count %d != arg count %d", got, len(stmt.Args))
		}
		if stmt.Args[0] != value {
			t.Errorf("Args[0] = %#v, want the raw value", stmt.Args[0])
		}
	}
}

func TestTranslateDeterministic(t *testing.T) {
	q := ast.Query[record]{
		Conditions: []ast.Condition{
			ast.And(ast.Equal("a", 1), ast.In("b", 2, 3)),
			ast.Match("c", ast.OpEndsWith, "x", false),
		},
		Ordering:   []ast.OrderBy{{Field: "a", Direction: ast.Ascending}},
		Pagination: &ast.Pagination{Limit: 7, Offset: 3},
	}

	first, err := Translate(q, "t")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	second, err := Translate(q, "t")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if first.SQL != second.SQL {
		t.Errorf("SQL differs across runs:\n  %q\n  %q", first.SQL, second.SQL)
	}
	if fmt.Sprintf("%#v", first.Args) != fmt.Sprintf("%#v", second.Args) {
		t.Errorf("Args differ across runs: %#v vs %#v", first.Args, second.Args)
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name  string
		query ast.Query[record]
		table string
		kind  qerr.Kind
	}{
		{
			name:  "hostile table name",
			query: ast.Query[record]{},
			table: "users; DROP TABLE users",
			kind:  qerr.KindInvalidSyntax,
		},
		{
			name: "hostile field name",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Equal("name = '' OR 1", 1)},
			},
			table: "t",
			kind:  qerr.KindInvalidSyntax,
		},
		{
			name: "unknown equality operator",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.EqualityCondition{Field: "a", Op: "~=", Value: 1}},
			},
			table: "t",
			kind:  qerr.KindInvalidOperator,
		},
		{
			name: "unknown aggregation kind",
			query: ast.Query[record]{
				Aggregations: []ast.Aggregation{{Kind: "median", Field: "x", Alias: "m"}},
			},
			table: "t",
			kind:  qerr.KindInvalidOperator,
		},
		{
			name: "unknown composite operator",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.CompositeCondition{Op: "xor", Children: []ast.Condition{ast.Equal("a", 1)}}},
			},
			table: "t",
			kind:  qerr.KindInvalidOperator,
		},
		{
			name: "empty set list",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.SetCondition{Field: "a", Op: ast.OpIn}},
			},
			table: "t",
			kind:  qerr.KindInvalidValue,
		},
		{
			name: "negative pagination",
			query: ast.Query[record]{
				Pagination: &ast.Pagination{Limit: -2},
			},
			table: "t",
			kind:  qerr.KindInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.query, tt.table)
			if err == nil {
				t.Fatal("Translate() succeeded, want error")
			}
			if got := qerr.KindOf(err); got != tt.kind {
				t.Errorf("error kind = %q, want %q (%v)", got, tt.kind, err)
			}
		})
	}
}

func renderStatement(stmt *Statement) []byte {
	var sb strings.Builder
	sb.WriteString(stmt.SQL)
	sb.WriteString("\n")
	for i, arg := range stmt.Args {
		fmt.Fprintf(&sb, "$%d = %#v\n", i+1, arg)
	}
	return []byte(sb.String())
}

func TestTranslateGolden(t *testing.T) {
	tests := []struct {
		name  string
		query ast.Query[record]
		opts  Options
	}{
		{
			name: "kitchen_sink",
			query: ast.Query[record]{
				Conditions: []ast.Condition{
					ast.And(
						ast.Equal("dept", "eng"),
						ast.Or(ast.Compare("age", ast.OpGreaterOrEqual, 30), ast.IsNull("manager_id")),
					),
					ast.Match("name", ast.OpContains, "smi", true),
					ast.NotIn("status", "disabled", "banned"),
				},
				Ordering: []ast.OrderBy{
					{Field: "salary", Direction: ast.Descending, Nulls: ast.NullsLast},
					{Field: "name", Direction: ast.Ascending},
				},
				Projection: &ast.Projection{Fields: []string{"id", "name", "salary"}},
				Pagination: &ast.Pagination{Limit: 25, Offset: 50},
			},
		},
		{
			name: "aggregation_having",
			query: ast.Query[record]{
				Conditions: []ast.Condition{ast.Compare("hired_at", ast.OpGreaterOrEqual, "2023-01-01")},
				Grouping:   &ast.GroupBy{Fields: []string{"dept"}},
				Aggregations: []ast.Aggregation{
					{Kind: ast.AggregateCount, Alias: "headcount"},
					{Kind: ast.AggregateAvg, Field: "salary", Alias: "avg_salary"},
				},
				Having:   &ast.HavingCondition{Alias: "headcount", Op: ast.OpGreaterThan, Value: 5},
				Ordering: []ast.OrderBy{{Field: "avg_salary", Direction: ast.Descending}},
			},
		},
		{
			name: "case_insensitive_dollar",
			query: ast.Query[record]{
				Conditions: []ast.Condition{
					ast.Match("name", ast.OpStartsWith, "Al", false),
					ast.Equal("active", true),
				},
			},
			opts: Options{Placeholder: Dollar},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := TranslateWith(tt.query, "employees", tt.opts)
			if err != nil {
				t.Fatalf("TranslateWith() error = %v", err)
			}
			g.Assert(t, tt.name, renderStatement(stmt))
		})
	}
}
