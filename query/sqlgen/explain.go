package sqlgen

import (
	"fmt"
	"strings"
)

// PlanStep describes one inferred phase of query execution. Steps are
// diagnostic only and never influence execution.
type PlanStep struct {
	Operation string  `json:"operation"`
	Detail    string  `json:"detail"`
	Cost      float64 `json:"cost"`
}

// Plan is a heuristic execution plan derived from a compiled statement.
type Plan struct {
	Steps         []PlanStep `json:"steps"`
	EstimatedCost float64    `json:"estimated_cost"`
}

// Explain derives a plan by scanning the rendered SQL for clause
// keywords. Costs follow the statement's parameter count, ordering
// count, grouping width and aggregation count.
func Explain(stmt *Statement) *Plan {
	plan := &Plan{}
	sql := stmt.SQL

	if strings.Contains(sql, " WHERE ") {
		plan.Steps = append(plan.Steps, PlanStep{
			Operation: "filter",
			Detail:    fmt.Sprintf("apply conditions (%d parameters)", len(stmt.Args)),
			Cost:      1 + 0.5*float64(len(stmt.Args)),
		})
	}

	groupSegment := clauseSegment(sql, " GROUP BY ", " HAVING ", " ORDER BY ", " LIMIT ")
	aggregates := countAggregates(sql)
	if groupSegment != "" || aggregates > 0 {
		width := 0
		detail := fmt.Sprintf("%d aggregate(s)", aggregates)
		if groupSegment != "" {
			width = strings.Count(groupSegment, ",") + 1
			detail = fmt.Sprintf("group by %s; %s", groupSegment, detail)
		}
		plan.Steps = append(plan.Steps, PlanStep{
			Operation: "aggregate",
			Detail:    detail,
			Cost:      2*float64(width) + float64(aggregates),
		})
	}

	if orderSegment := clauseSegment(sql, " ORDER BY ", " LIMIT "); orderSegment != "" {
		fields := strings.Count(orderSegment, ",") + 1
		plan.Steps = append(plan.Steps, PlanStep{
			Operation: "sort",
			Detail:    "order by " + orderSegment,
			Cost:      2 * float64(fields),
		})
	}

	if limitSegment := clauseSegment(sql, " LIMIT "); limitSegment != "" {
		plan.Steps = append(plan.Steps, PlanStep{
			Operation: "paginate",
			Detail:    "limit " + limitSegment,
			Cost:      0.5,
		})
	}

	for _, step := range plan.Steps {
		plan.EstimatedCost += step.Cost
	}
	return plan
}

// clauseSegment extracts the text following keyword up to the first of
// the terminator keywords, "" when the keyword is absent.
func clauseSegment(sql, keyword string, terminators ...string) string {
	start := strings.Index(sql, keyword)
	if start < 0 {
		return ""
	}
	segment := sql[start+len(keyword):]
	end := len(segment)
	for _, term := range terminators {
		if i := strings.Index(segment, term); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(segment[:end])
}

func countAggregates(sql string) int {
	selectList, _, _ := strings.Cut(strings.TrimPrefix(sql, "SELECT "), " FROM ")
	total := 0
	for _, fn := range []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX("} {
		total += strings.Count(selectList, fn)
	}
	return total
}
