package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/client"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var conn connectionFlags
	var shape queryFlags
	var asJSON bool
	var showPlan bool

	cmd := &cobra.Command{
		Use:   "run [filter]",
		Short: "Run a query against the configured backend",
		Long: `Run parses the filter expression, shapes the query with flags and
executes it against the configured backend.

Filter syntax:
  dept = "eng" and salary >= 100000
  name starts_with "a" or manager_id is null
  dept in ("eng", "sales") and not (active = false)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			return runRun(cmd.Context(), conn, shape, filter, asJSON, showPlan)
		},
	}

	conn.register(cmd)
	shape.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw result as JSON")
	cmd.Flags().BoolVar(&showPlan, "plan", false, "Attach the heuristic plan to the metadata")

	return cmd
}

func runRun(ctx context.Context, conn connectionFlags, shape queryFlags, filter string, asJSON, showPlan bool) error {
	cfg, err := conn.resolve()
	if err != nil {
		return err
	}

	q, err := buildQuery(filter, shape)
	if err != nil {
		return err
	}

	c, err := client.Open(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer c.Close()

	exec, err := newExecutor(c, cfg, showPlan)
	if err != nil {
		return err
	}
	defer exec.Close()

	res := exec.Execute(ctx, q)

	if asJSON {
		doc, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
		return res.Err()
	}

	if err := renderResult(res); err != nil {
		return err
	}
	if showPlan && res.Metadata.Plan != nil {
		printPlan(res.Metadata.Plan)
	}
	return nil
}
