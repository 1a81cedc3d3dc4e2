package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
)

// buildConditions renders a condition list joined by the given composite
// operator, without outer parentheses.
func (tr *translator) buildConditions(conditions []ast.Condition, op ast.CompositeOp) (string, error) {
	joiner := " AND "
	if op == ast.OpOr {
		joiner = " OR "
	}
	parts := make([]string, len(conditions))
	for i, c := range conditions {
		part, err := tr.buildCondition(c)
		if err != nil {
			return "", err
		}
		parts[i] = part
	}
	return strings.Join(parts, joiner), nil
}

// buildCondition renders one condition node. Every value is bound as a
// positional parameter.
func (tr *translator) buildCondition(c ast.Condition) (string, error) {
	switch n := c.(type) {
	case ast.EqualityCondition:
		if err := checkIdent(n.Field); err != nil {
			return "", err
		}
		switch n.Op {
		case ast.OpEqual, ast.OpNotEqual:
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown equality operator %q", n.Op)
		}
		return fmt.Sprintf("%s %s %s", n.Field, n.Op, tr.bind(n.Value)), nil

	case ast.ComparisonCondition:
		if err := checkIdent(n.Field); err != nil {
			return "", err
		}
		switch n.Op {
		case ast.OpGreaterThan, ast.OpGreaterOrEqual, ast.OpLessThan, ast.OpLessOrEqual:
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown comparison operator %q", n.Op)
		}
		return fmt.Sprintf("%s %s %s", n.Field, n.Op, tr.bind(n.Value)), nil

	case ast.PatternCondition:
		return tr.buildPattern(n)

	case ast.SetCondition:
		if err := checkIdent(n.Field); err != nil {
			return "", err
		}
		if len(n.Values) == 0 {
			return "", qerr.New(qerr.KindInvalidValue, "%s on %q requires at least one value", n.Op, n.Field)
		}
		placeholders := make([]string, len(n.Values))
		for i, v := range n.Values {
			placeholders[i] = tr.bind(v)
		}
		keyword := "IN"
		switch n.Op {
		case ast.OpIn:
		case ast.OpNotIn:
			keyword = "NOT IN"
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown set operator %q", n.Op)
		}
		return fmt.Sprintf("%s %s (%s)", n.Field, keyword, strings.Join(placeholders, ", ")), nil

	case ast.NullCondition:
		if err := checkIdent(n.Field); err != nil {
			return "", err
		}
		switch n.Op {
		case ast.OpIsNull:
			return n.Field + " IS NULL", nil
		case ast.OpIsNotNull:
			return n.Field + " IS NOT NULL", nil
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown null operator %q", n.Op)
		}

	case ast.CompositeCondition:
		switch n.Op {
		case ast.OpAnd, ast.OpOr:
			if len(n.Children) == 0 {
				return "", qerr.New(qerr.KindInvalidValue, "%s composite requires at least one child", n.Op)
			}
			inner, err := tr.buildConditions(n.Children, n.Op)
			if err != nil {
				return "", err
			}
			return "(" + inner + ")", nil
		case ast.OpNot:
			if len(n.Children) != 1 {
				return "", qerr.New(qerr.KindInvalidValue, "not composite requires exactly one child, got %d", len(n.Children))
			}
			inner, err := tr.buildCondition(n.Children[0])
			if err != nil {
				return "", err
			}
			return "NOT (" + inner + ")", nil
		default:
			return "", qerr.New(qerr.KindInvalidOperator, "unknown composite operator %q", n.Op)
		}

	default:
		return "", qerr.New(qerr.KindInvalidOperator, "unknown condition type %T", c)
	}
}

// buildPattern renders substring and regex matches. Substring operators
// compile to LIKE with the value wrapped in percent signs; matches
// compiles to the engine's REGEXP operator. Case-insensitive matching
// lowercases both the field expression and the bound literal.
func (tr *translator) buildPattern(n ast.PatternCondition) (string, error) {
	if err := checkIdent(n.Field); err != nil {
		return "", err
	}

	var sqlOp, value string
	switch n.Op {
	case ast.OpContains:
		sqlOp, value = "LIKE", "%"+n.Value+"%"
	case ast.OpStartsWith:
		sqlOp, value = "LIKE", n.Value+"%"
	case ast.OpEndsWith:
		sqlOp, value = "LIKE", "%"+n.Value
	case ast.OpMatches:
		sqlOp, value = "REGEXP", n.Value
	default:
		return "", qerr.New(qerr.KindInvalidOperator, "unknown pattern operator %q", n.Op)
	}

	field := n.Field
	if !n.CaseSensitive {
		field = fmt.Sprintf("LOWER(%s)", n.Field)
		value = strings.ToLower(value)
	}
	return fmt.Sprintf("%s %s %s", field, sqlOp, tr.bind(value)), nil
}
