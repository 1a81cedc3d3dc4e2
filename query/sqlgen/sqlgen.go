// Package sqlgen compiles validated query values to parameterized SQL.
// Every condition and having value is bound through a positional
// placeholder, never interpolated into the SQL text. Identifiers are
// rendered bare after a shape check, and limit/offset are rendered as
// literals from their validated non-negative integers.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
)

// Statement is a compiled SQL query with its ordered parameter list.
type Statement struct {
	SQL  string
	Args []any
}

// Placeholder renders the n-th (1-based) positional parameter.
type Placeholder func(n int) string

// Question renders MySQL/SQLite style "?" placeholders.
func Question(int) string { return "?" }

// Dollar renders PostgreSQL style "$n" placeholders.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Options configure translation. The zero value uses "?" placeholders.
type Options struct {
	Placeholder Placeholder
}

// Translate compiles the query against the given table using "?"
// placeholders.
func Translate[T any](q ast.Query[T], table string) (*Statement, error) {
	return TranslateWith(q, table, Options{})
}

// TranslateWith compiles the query against the given table. Clause order
// is fixed: SELECT, FROM, WHERE, GROUP BY, HAVING, ORDER BY, LIMIT and
// OFFSET. The same query value always renders to the same SQL text and
// parameter order.
func TranslateWith[T any](q ast.Query[T], table string, opts Options) (*Statement, error) {
	placeholder := opts.Placeholder
	if placeholder == nil {
		placeholder = Question
	}
	tr := &translator{placeholder: placeholder}

	if err := checkIdent(table); err != nil {
		return nil, err
	}

	var parts []string

	selectClause, err := buildSelect(q.Grouping, q.Aggregations, q.Projection)
	if err != nil {
		return nil, err
	}
	parts = append(parts, "SELECT "+selectClause, "FROM "+table)

	if len(q.Conditions) > 0 {
		where, err := tr.buildConditions(q.Conditions, ast.OpAnd)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "WHERE "+where)
	}

	if q.Grouping != nil && len(q.Grouping.Fields) > 0 {
		fields, err := checkIdents(q.Grouping.Fields)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "GROUP BY "+strings.Join(fields, ", "))
	}

	if q.Having != nil {
		having, err := tr.buildHaving(*q.Having)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "HAVING "+having)
	}

	if len(q.Ordering) > 0 {
		orderBy, err := buildOrdering(q.Ordering)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "ORDER BY "+orderBy)
	}

	if q.Pagination != nil {
		if q.Pagination.Limit < 0 || q.Pagination.Offset < 0 {
			return nil, qerr.New(qerr.KindInvalidValue,
				"pagination must be non-negative, got limit %d offset %d",
				q.Pagination.Limit, q.Pagination.Offset)
		}
		switch {
		case q.Pagination.Limit > 0 && q.Pagination.Offset > 0:
			parts = append(parts, fmt.Sprintf("LIMIT %d OFFSET %d", q.Pagination.Limit, q.Pagination.Offset))
		case q.Pagination.Limit > 0:
			parts = append(parts, fmt.Sprintf("LIMIT %d", q.Pagination.Limit))
		case q.Pagination.Offset > 0:
			// Unbounded limit with an offset; LIMIT -1 is the engine's
			// "no limit" idiom and OFFSET requires a LIMIT clause.
			parts = append(parts, fmt.Sprintf("LIMIT -1 OFFSET %d", q.Pagination.Offset))
		}
	}

	return &Statement{SQL: strings.Join(parts, " "), Args: tr.args}, nil
}

// translator carries the parameter list being accumulated during one
// translation pass.
type translator struct {
	placeholder Placeholder
	args        []any
}

// bind appends a value to the parameter list and returns its placeholder.
func (tr *translator) bind(value any) string {
	tr.args = append(tr.args, value)
	return tr.placeholder(len(tr.args))
}

// buildSelect renders the select list. Aggregations win over projection:
// grouping fields come first, then one aliased aggregate expression per
// aggregation. Without aggregations an explicit projection is used, and
// a missing or include-all projection renders "*".
func buildSelect(grouping *ast.GroupBy, aggregations []ast.Aggregation, projection *ast.Projection) (string, error) {
	if len(aggregations) > 0 {
		var cols []string
		if grouping != nil {
			fields, err := checkIdents(grouping.Fields)
			if err != nil {
				return "", err
			}
			cols = append(cols, fields...)
		}
		for _, agg := range aggregations {
			expr, err := aggregateExpr(agg)
			if err != nil {
				return "", err
			}
			cols = append(cols, expr)
		}
		return strings.Join(cols, ", "), nil
	}

	if projection != nil && !projection.All && len(projection.Fields) > 0 {
		fields, err := checkIdents(projection.Fields)
		if err != nil {
			return "", err
		}
		return strings.Join(fields, ", "), nil
	}
	return "*", nil
}

func aggregateExpr(agg ast.Aggregation) (string, error) {
	if err := checkIdent(agg.Alias); err != nil {
		return "", err
	}
	if agg.Field != "" {
		if err := checkIdent(agg.Field); err != nil {
			return "", err
		}
	}
	switch agg.Kind {
	case ast.AggregateCount:
		if agg.Field == "" {
			return fmt.Sprintf("COUNT(*) AS %s", agg.Alias), nil
		}
		return fmt.Sprintf("COUNT(%s) AS %s", agg.Field, agg.Alias), nil
	case ast.AggregateCountDistinct:
		return fmt.Sprintf("COUNT(DISTINCT %s) AS %s", agg.Field, agg.Alias), nil
	case ast.AggregateSum:
		return fmt.Sprintf("SUM(%s) AS %s", agg.Field, agg.Alias), nil
	case ast.AggregateAvg:
		return fmt.Sprintf("AVG(%s) AS %s", agg.Field, agg.Alias), nil
	case ast.AggregateMin:
		return fmt.Sprintf("MIN(%s) AS %s", agg.Field, agg.Alias), nil
	case ast.AggregateMax:
		return fmt.Sprintf("MAX(%s) AS %s", agg.Field, agg.Alias), nil
	default:
		return "", qerr.New(qerr.KindInvalidOperator, "unknown aggregation kind %q", agg.Kind)
	}
}

func (tr *translator) buildHaving(h ast.HavingCondition) (string, error) {
	if err := checkIdent(h.Alias); err != nil {
		return "", err
	}
	switch h.Op {
	case ast.OpGreaterThan, ast.OpGreaterOrEqual, ast.OpLessThan, ast.OpLessOrEqual:
	default:
		return "", qerr.New(qerr.KindInvalidOperator, "unknown having operator %q", h.Op)
	}
	return fmt.Sprintf("%s %s %s", h.Alias, h.Op, tr.bind(h.Value)), nil
}

func buildOrdering(ordering []ast.OrderBy) (string, error) {
	parts := make([]string, len(ordering))
	for i, o := range ordering {
		if err := checkIdent(o.Field); err != nil {
			return "", err
		}
		var dir string
		switch o.Direction {
		case ast.Ascending:
			dir = "ASC"
		case ast.Descending:
			dir = "DESC"
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown sort direction %q", o.Direction)
		}
		part := fmt.Sprintf("%s %s", o.Field, dir)
		switch o.Nulls {
		case ast.NullsDefault:
		case ast.NullsFirst:
			part += " NULLS FIRST"
		case ast.NullsLast:
			part += " NULLS LAST"
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown null ordering %q", o.Nulls)
		}
		parts[i] = part
	}
	return strings.Join(parts, ", "), nil
}

// checkIdent admits bare SQL identifiers, optionally qualified with one
// dot. Values never pass through here; this guards the identifier
// positions that are rendered into the SQL text.
func checkIdent(ident string) error {
	if ident == "" {
		return qerr.New(qerr.KindInvalidSyntax, "empty identifier")
	}
	dots := 0
	for i, r := range ident {
		switch {
		case r == '.':
			dots++
			if dots > 1 || i == 0 || i == len(ident)-1 {
				return badIdent(ident)
			}
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 || ident[i-1] == '.' {
				return badIdent(ident)
			}
		default:
			return badIdent(ident)
		}
	}
	return nil
}

func badIdent(ident string) error {
	return qerr.New(qerr.KindInvalidSyntax, "invalid identifier %q", ident).
		WithDetail("identifier", ident)
}

func checkIdents(idents []string) ([]string, error) {
	for _, ident := range idents {
		if err := checkIdent(ident); err != nil {
			return nil, err
		}
	}
	return idents, nil
}
