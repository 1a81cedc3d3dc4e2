// Package parser parses the textual filter language into conditions.
//
// The language covers the condition surface: comparisons
// (`salary >= 100000`), patterns (`name contains "smi"`), membership
// (`status in ("active", "pending")`), null checks
// (`manager_id is not null`) and boolean composition with `and`, `or`,
// `not` and parentheses. Keywords are lowercase; strings are
// double-quoted.
package parser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/qerr"
)

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Op", Pattern: `!=|>=|<=|=|>|<`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// rawExpr is the raw parse tree; it is converted to conditions after
// parsing.
type rawExpr struct {
	Pos   lexer.Position
	First *rawAnd   `parser:"@@"`
	Rest  []*rawAnd `parser:"( \"or\" @@ )*"`
}

type rawAnd struct {
	First *rawUnary   `parser:"@@"`
	Rest  []*rawUnary `parser:"( \"and\" @@ )*"`
}

type rawUnary struct {
	Not     *rawUnary   `parser:"\"not\" @@"`
	Primary *rawPrimary `parser:"| @@"`
}

type rawPrimary struct {
	Group     *rawExpr      `parser:"\"(\" @@ \")\""`
	Predicate *rawPredicate `parser:"| @@"`
}

type rawPredicate struct {
	Field   string      `parser:"@Ident"`
	Null    *rawNull    `parser:"( @@"`
	Set     *rawSet     `parser:"| @@"`
	Pattern *rawPattern `parser:"| @@"`
	Compare *rawCompare `parser:"| @@ )"`
}

type rawNull struct {
	Not bool `parser:"\"is\" @\"not\"? \"null\""`
}

type rawSet struct {
	Not    bool      `parser:"@\"not\"? \"in\""`
	Values []*rawLit `parser:"\"(\" @@ ( \",\" @@ )* \")\""`
}

type rawPattern struct {
	Op    string `parser:"@( \"contains\" | \"starts_with\" | \"ends_with\" | \"matches\" )"`
	Value string `parser:"@String"`
}

type rawCompare struct {
	Op    string  `parser:"@Op"`
	Value *rawLit `parser:"@@"`
}

type rawLit struct {
	Str   *string  `parser:"  @String"`
	Num   *float64 `parser:"| @Number"`
	True  bool     `parser:"| @\"true\""`
	False bool     `parser:"| @\"false\""`
	Null  bool     `parser:"| @\"null\""`
}

var filterParser = participle.MustBuild[rawExpr](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse parses one filter expression into conditions suitable for
// Query.Conditions: a top-level and-expression becomes one condition
// per branch, anything else a single condition.
func Parse(input string) ([]ast.Condition, error) {
	if strings.TrimSpace(input) == "" {
		return nil, qerr.New(qerr.KindInvalidValue, "empty filter expression")
	}

	raw, err := filterParser.ParseString("filter", input)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, qerr.Wrap(qerr.KindInvalidValue, err, "invalid filter at %s", perr.Position()).
				WithDetail("input", input)
		}
		return nil, qerr.Wrap(qerr.KindInvalidValue, err, "invalid filter")
	}

	cond := convertExpr(raw)
	if composite, ok := cond.(ast.CompositeCondition); ok && composite.Op == ast.OpAnd {
		return composite.Children, nil
	}
	return []ast.Condition{cond}, nil
}

func convertExpr(e *rawExpr) ast.Condition {
	first := convertAnd(e.First)
	if len(e.Rest) == 0 {
		return first
	}
	children := make([]ast.Condition, 0, len(e.Rest)+1)
	children = append(children, first)
	for _, a := range e.Rest {
		children = append(children, convertAnd(a))
	}
	return ast.Or(children...)
}

func convertAnd(a *rawAnd) ast.Condition {
	first := convertUnary(a.First)
	if len(a.Rest) == 0 {
		return first
	}
	children := make([]ast.Condition, 0, len(a.Rest)+1)
	children = append(children, first)
	for _, u := range a.Rest {
		children = append(children, convertUnary(u))
	}
	return ast.And(children...)
}

func convertUnary(u *rawUnary) ast.Condition {
	if u.Not != nil {
		return ast.Not(convertUnary(u.Not))
	}
	return convertPrimary(u.Primary)
}

func convertPrimary(p *rawPrimary) ast.Condition {
	if p.Group != nil {
		return convertExpr(p.Group)
	}
	return convertPredicate(p.Predicate)
}

func convertPredicate(p *rawPredicate) ast.Condition {
	switch {
	case p.Null != nil:
		if p.Null.Not {
			return ast.IsNotNull(p.Field)
		}
		return ast.IsNull(p.Field)

	case p.Set != nil:
		values := make([]any, len(p.Set.Values))
		for i, l := range p.Set.Values {
			values[i] = l.value()
		}
		if p.Set.Not {
			return ast.NotIn(p.Field, values...)
		}
		return ast.In(p.Field, values...)

	case p.Pattern != nil:
		return ast.Match(p.Field, patternOps[p.Pattern.Op], p.Pattern.Value, true)

	default:
		value := p.Compare.Value.value()
		switch p.Compare.Op {
		case "=":
			return ast.Equal(p.Field, value)
		case "!=":
			return ast.NotEqual(p.Field, value)
		default:
			return ast.Compare(p.Field, comparisonOps[p.Compare.Op], value)
		}
	}
}

var patternOps = map[string]ast.PatternOp{
	"contains":    ast.OpContains,
	"starts_with": ast.OpStartsWith,
	"ends_with":   ast.OpEndsWith,
	"matches":     ast.OpMatches,
}

var comparisonOps = map[string]ast.ComparisonOp{
	">":  ast.OpGreaterThan,
	">=": ast.OpGreaterOrEqual,
	"<":  ast.OpLessThan,
	"<=": ast.OpLessOrEqual,
}

func (l *rawLit) value() any {
	switch {
	case l.Str != nil:
		return *l.Str
	case l.Num != nil:
		return *l.Num
	case l.True:
		return true
	case l.False:
		return false
	default:
		return nil
	}
}
