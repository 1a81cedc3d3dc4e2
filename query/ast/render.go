package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderCondition produces a deterministic single-line form of a
// condition tree, used for logging, diagnostics and cache keys.
func RenderCondition(c Condition) string {
	var sb strings.Builder
	writeCondition(&sb, c)
	return sb.String()
}

func writeCondition(sb *strings.Builder, c Condition) {
	switch n := c.(type) {
	case EqualityCondition:
		fmt.Fprintf(sb, "%s %s %s", n.Field, n.Op, renderValue(n.Value))
	case ComparisonCondition:
		fmt.Fprintf(sb, "%s %s %s", n.Field, n.Op, renderValue(n.Value))
	case PatternCondition:
		op := string(n.Op)
		if !n.CaseSensitive {
			op += "~"
		}
		fmt.Fprintf(sb, "%s %s %s", n.Field, op, strconv.Quote(n.Value))
	case SetCondition:
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = renderValue(v)
		}
		fmt.Fprintf(sb, "%s %s [%s]", n.Field, n.Op, strings.Join(parts, ", "))
	case NullCondition:
		if n.Op == OpIsNull {
			fmt.Fprintf(sb, "%s is null", n.Field)
		} else {
			fmt.Fprintf(sb, "%s is not null", n.Field)
		}
	case CompositeCondition:
		if n.Op == OpNot {
			sb.WriteString("NOT (")
			if len(n.Children) > 0 {
				writeCondition(sb, n.Children[0])
			}
			sb.WriteString(")")
			return
		}
		joiner := " AND "
		if n.Op == OpOr {
			joiner = " OR "
		}
		sb.WriteString("(")
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteString(joiner)
			}
			writeCondition(sb, child)
		}
		sb.WriteString(")")
	default:
		sb.WriteString("<unknown condition>")
	}
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// String renders the query as a deterministic single line. Structurally
// equal queries render identically, so the output doubles as a cache
// fingerprint.
func (q Query[T]) String() string {
	var sections []string

	if q.Projection != nil {
		if q.Projection.All {
			sections = append(sections, "select *")
		} else {
			sections = append(sections, "select "+strings.Join(q.Projection.Fields, ", "))
		}
	}
	if len(q.Conditions) > 0 {
		parts := make([]string, len(q.Conditions))
		for i, c := range q.Conditions {
			parts[i] = RenderCondition(c)
		}
		sections = append(sections, "where "+strings.Join(parts, " AND "))
	}
	if q.Grouping != nil {
		sections = append(sections, "group by "+strings.Join(q.Grouping.Fields, ", "))
	}
	if len(q.Aggregations) > 0 {
		parts := make([]string, len(q.Aggregations))
		for i, a := range q.Aggregations {
			parts[i] = fmt.Sprintf("%s(%s) as %s", a.Kind, a.Field, a.Alias)
		}
		sections = append(sections, "agg "+strings.Join(parts, ", "))
	}
	if q.Having != nil {
		sections = append(sections, fmt.Sprintf("having %s %s %s", q.Having.Alias, q.Having.Op, renderValue(q.Having.Value)))
	}
	if len(q.Ordering) > 0 {
		parts := make([]string, len(q.Ordering))
		for i, o := range q.Ordering {
			p := fmt.Sprintf("%s %s", o.Field, o.Direction)
			if o.Nulls != NullsDefault {
				p += " nulls " + string(o.Nulls)
			}
			parts[i] = p
		}
		sections = append(sections, "order by "+strings.Join(parts, ", "))
	}
	if q.Pagination != nil {
		switch {
		case q.Pagination.Limit > 0 && q.Pagination.Offset > 0:
			sections = append(sections, fmt.Sprintf("limit %d offset %d", q.Pagination.Limit, q.Pagination.Offset))
		case q.Pagination.Limit > 0:
			sections = append(sections, fmt.Sprintf("limit %d", q.Pagination.Limit))
		case q.Pagination.Offset > 0:
			sections = append(sections, fmt.Sprintf("offset %d", q.Pagination.Offset))
		}
	}
	if q.Depth != nil {
		sections = append(sections, "depth "+q.Depth.String())
	}
	if q.Hints != nil {
		sections = append(sections, fmt.Sprintf("hints mem=%g speed=%g cache=%s",
			q.Hints.MemoryFactor, q.Hints.SpeedFactor, q.Hints.CacheStrategy))
	}

	if len(sections) == 0 {
		return "match all"
	}
	return strings.Join(sections, "; ")
}
