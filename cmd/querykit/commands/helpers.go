package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/client"
	"github.com/satishbabariya/querykit/internal/config"
	"github.com/satishbabariya/querykit/internal/debug"
	"github.com/satishbabariya/querykit/internal/ui"
	"github.com/satishbabariya/querykit/query/ast"
	"github.com/satishbabariya/querykit/query/builder"
	"github.com/satishbabariya/querykit/query/executor"
	"github.com/satishbabariya/querykit/query/parser"
	"github.com/satishbabariya/querykit/query/qerr"
)

// record is the row shape CLI queries decode into.
type record = map[string]any

// connectionFlags override the configured backend per invocation.
type connectionFlags struct {
	provider string
	url      string
	table    string
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.provider, "provider", "", "Backend provider (sqlite, mysql, postgres)")
	flags.StringVar(&f.url, "url", "", "Connection string")
	flags.StringVarP(&f.table, "table", "t", "", "Table to query")
}

// load merges flag overrides over the loaded configuration.
func (f *connectionFlags) load() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		// Only switch on. Off stays whatever QUERYKIT_DEBUG set.
		debug.Init(true)
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.url != "" {
		cfg.DatabaseURL = f.url
	}
	if f.table != "" {
		cfg.Table = f.table
	}
	return cfg, nil
}

// resolve is load plus the table requirement shared by one-shot commands.
func (f *connectionFlags) resolve() (*config.Config, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	if cfg.Table == "" {
		return nil, qerr.New(qerr.KindInvalidValue,
			"no table selected: pass --table or set it in .querykit.yaml")
	}
	return cfg, nil
}

// queryFlags shape the query built around the filter expression.
type queryFlags struct {
	selects []string
	order   []string
	group   []string
	aggs    []string
	limit   int
	offset  int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.selects, "select", nil, "Fields to return (default all)")
	flags.StringSliceVar(&f.order, "order", nil, "Order by field or field:desc")
	flags.StringSliceVar(&f.group, "group", nil, "Group by fields")
	flags.StringSliceVar(&f.aggs, "agg", nil, "Aggregations: count, sum:field or sum:field:alias")
	flags.IntVar(&f.limit, "limit", 0, "Maximum rows to return")
	flags.IntVar(&f.offset, "offset", 0, "Rows to skip")
}

// buildQuery parses the filter expression and applies the shaping flags.
func buildQuery(filter string, f queryFlags) (ast.Query[record], error) {
	b := builder.New[record]()

	if strings.TrimSpace(filter) != "" {
		conditions, err := parser.Parse(filter)
		if err != nil {
			return ast.Query[record]{}, err
		}
		for _, c := range conditions {
			b = b.Where(c)
		}
	}

	for _, spec := range f.order {
		field, direction, err := parseOrder(spec)
		if err != nil {
			return ast.Query[record]{}, err
		}
		b = b.OrderBy(field, direction)
	}
	if len(f.selects) > 0 {
		b = b.Select(f.selects...)
	}
	if len(f.group) > 0 {
		b = b.GroupBy(f.group...)
	}
	for _, spec := range f.aggs {
		var err error
		b, err = applyAggregation(b, spec)
		if err != nil {
			return ast.Query[record]{}, err
		}
	}
	if f.limit > 0 || f.offset > 0 {
		b = b.Paginate(f.limit, f.offset)
	}
	return b.Build()
}

func parseOrder(spec string) (string, ast.SortDirection, error) {
	field, direction, found := strings.Cut(spec, ":")
	if !found {
		return field, ast.Ascending, nil
	}
	switch strings.ToLower(direction) {
	case "asc":
		return field, ast.Ascending, nil
	case "desc":
		return field, ast.Descending, nil
	default:
		return "", "", qerr.New(qerr.KindInvalidValue,
			"bad order %q: direction must be asc or desc", spec)
	}
}

// applyAggregation parses a kind[:field[:alias]] spec. For plain count
// the second segment is the alias, since count takes no field.
func applyAggregation(b *builder.Builder[record], spec string) (*builder.Builder[record], error) {
	parts := strings.SplitN(spec, ":", 3)
	kind := strings.ToLower(parts[0])
	field, alias := "", ""
	if len(parts) > 1 {
		field = parts[1]
	}
	if len(parts) > 2 {
		alias = parts[2]
	}

	if kind == "count" {
		if alias == "" {
			alias = field
		}
		if alias == "" {
			alias = "count"
		}
		return b.Count(alias), nil
	}

	if field == "" {
		return nil, qerr.New(qerr.KindInvalidValue, "aggregation %q requires a field", spec)
	}
	if alias == "" {
		alias = kind + "_" + field
	}

	switch kind {
	case "count_distinct":
		return b.CountDistinct(field, alias), nil
	case "sum":
		return b.Sum(field, alias), nil
	case "avg":
		return b.Avg(field, alias), nil
	case "min":
		return b.Min(field, alias), nil
	case "max":
		return b.Max(field, alias), nil
	default:
		return nil, qerr.New(qerr.KindInvalidOperator, "unknown aggregation %q", kind)
	}
}

// newExecutor wires the configured timeout and placeholder style into
// an executor for the client's backend.
func newExecutor(c *client.Client, cfg *config.Config, includePlan bool) (*executor.Executor[record], error) {
	opts := executor.DefaultOptions(c.DB(), cfg.Table)
	opts.Placeholder = c.Placeholder()
	if cfg.TimeoutMS > 0 {
		opts.TimeoutMillis = cfg.TimeoutMS
	}
	opts.IncludePlan = includePlan
	return executor.New[record](opts)
}

// renderResult prints a successful result as a table with a metadata
// footer. On failure it returns the first error unprinted so callers
// decide between exiting and continuing.
func renderResult(res *executor.Result[record]) error {
	if err := res.Err(); err != nil {
		return err
	}

	columns := ui.ResultColumns(res.Data)
	if len(columns) > 0 {
		ui.PrintTable(columns, ui.ResultTable(columns, res.Data))
	}
	ui.PrintInfo("%s", ui.FormatMetadata(
		len(res.Data),
		int64(res.Metadata.TotalCount),
		res.Metadata.ExecutionTimeMillis,
		res.Metadata.FromCache,
	))
	return nil
}
