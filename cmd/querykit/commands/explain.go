package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/client"
	"github.com/satishbabariya/querykit/internal/ui"
	"github.com/satishbabariya/querykit/query/optimizer"
	"github.com/satishbabariya/querykit/query/sqlgen"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	var conn connectionFlags
	var shape queryFlags

	cmd := &cobra.Command{
		Use:   "explain [filter]",
		Short: "Show the SQL, plan and index suggestions for a query",
		Long:  "Explain translates the query without executing it and renders the SQL, the heuristic plan and suggested indexes.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			return runExplain(conn, shape, filter)
		},
	}

	conn.register(cmd)
	shape.register(cmd)

	return cmd
}

func runExplain(conn connectionFlags, shape queryFlags, filter string) error {
	cfg, err := conn.resolve()
	if err != nil {
		return err
	}

	q, err := buildQuery(filter, shape)
	if err != nil {
		return err
	}

	// Open resolves the placeholder style; no connection is made since
	// nothing executes.
	c, err := client.Open(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer c.Close()

	stmt, err := sqlgen.TranslateWith(q, cfg.Table, sqlgen.Options{Placeholder: c.Placeholder()})
	if err != nil {
		return err
	}

	plan := sqlgen.Explain(stmt)
	suggestions := optimizer.SuggestIndexes(cfg.Table, q)
	selectivity := optimizer.EstimateQuery(q)

	return ui.PrintMarkdown(explainMarkdown(stmt, plan, selectivity, suggestions))
}

func explainMarkdown(stmt *sqlgen.Statement, plan *sqlgen.Plan, selectivity float64, suggestions []string) string {
	var md strings.Builder

	md.WriteString("# Query Plan\n\n")
	md.WriteString("## SQL\n\n")
	md.WriteString("```sql\n")
	md.WriteString(stmt.SQL)
	md.WriteString("\n```\n\n")
	if len(stmt.Args) > 0 {
		fmt.Fprintf(&md, "Arguments: `%v`\n\n", stmt.Args)
	}

	md.WriteString("## Steps\n\n")
	if len(plan.Steps) == 0 {
		md.WriteString("Full scan, no derived steps.\n\n")
	} else {
		md.WriteString("| Operation | Detail | Cost |\n")
		md.WriteString("|-----------|--------|------|\n")
		for _, step := range plan.Steps {
			fmt.Fprintf(&md, "| %s | %s | %.2f |\n", step.Operation, step.Detail, step.Cost)
		}
		md.WriteString("\n")
	}
	fmt.Fprintf(&md, "Estimated cost: **%.2f** · selectivity: **%.2f**\n\n", plan.EstimatedCost, selectivity)

	if len(suggestions) > 0 {
		md.WriteString("## Suggested indexes\n\n")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&md, "- `%s`\n", suggestion)
		}
		md.WriteString("\n")
	}

	return md.String()
}

// printPlan renders a plan as a plain table for run --plan output.
func printPlan(plan *sqlgen.Plan) {
	rows := make([][]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		rows = append(rows, []string{step.Operation, step.Detail, fmt.Sprintf("%.2f", step.Cost)})
	}
	ui.PrintTable([]string{"operation", "detail", "cost"}, rows)
	ui.PrintInfo("estimated cost: %.2f", plan.EstimatedCost)
}
