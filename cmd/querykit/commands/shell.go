package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/client"
	"github.com/satishbabariya/querykit/internal/config"
	"github.com/satishbabariya/querykit/internal/ui"
	"github.com/satishbabariya/querykit/query/cache"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	var conn connectionFlags

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive query shell",
		Long: `Shell reads filter expressions line by line and executes them against
the configured backend. Successful results are cached per query until
their entry expires.

Shell commands:
  \table <name>   switch the target table
  \cache          show cache statistics
  \clear          drop cached results
  \help           show this help
  \quit           leave the shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), conn)
		},
	}

	conn.register(cmd)

	return cmd
}

// shell holds the REPL state: one client, one shared result cache and
// a cached querier per visited table.
type shell struct {
	cfg      *config.Config
	client   *client.Client
	store    cache.Cache
	queriers map[string]*client.CachedQuerier[record]
}

func runShell(ctx context.Context, conn connectionFlags) error {
	cfg, err := conn.load()
	if err != nil {
		return err
	}

	c, err := client.Open(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Connect(ctx); err != nil {
		return err
	}

	s := &shell{
		cfg:      cfg,
		client:   c,
		store:    cache.NewLRU(cfg.CacheSize, time.Duration(cfg.CacheTTLSec)*time.Second),
		queriers: map[string]*client.CachedQuerier[record]{},
	}

	ui.PrintHeader("querykit", fmt.Sprintf("%s shell, \\help for commands", cfg.Provider))
	return s.loop(ctx)
}

func (s *shell) loop(ctx context.Context) error {
	for {
		var line string
		prompt := &survey.Input{Message: ui.PromptPrefix(s.cfg.Table)}
		if err := survey.AskOne(prompt, &line); err != nil {
			if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, `\`):
			if quit := s.command(line); quit {
				return nil
			}
		default:
			s.run(ctx, line)
		}
	}
}

// command handles a backslash command and reports whether to quit.
func (s *shell) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case `\quit`, `\q`, `\exit`:
		return true
	case `\table`, `\t`:
		if arg == "" {
			ui.PrintWarning("usage: \\table <name>")
			return false
		}
		s.cfg.Table = arg
		ui.PrintSuccess("querying %s", arg)
	case `\cache`:
		stats := s.store.Stats()
		ui.PrintBox("Cache", fmt.Sprintf(
			"entries   %d / %d\nhits      %d\nmisses    %d\nevictions %d\nhit rate  %.1f%%",
			stats.Size, stats.MaxSize, stats.Hits, stats.Misses, stats.Evictions, stats.HitRate))
	case `\clear`:
		s.store.Clear()
		ui.PrintSuccess("cache cleared")
	case `\help`, `\h`:
		ui.PrintList([]string{
			`\table <name>   switch the target table`,
			`\cache          show cache statistics`,
			`\clear          drop cached results`,
			`\quit           leave the shell`,
			`anything else runs as a filter expression`,
		})
	default:
		ui.PrintWarning("unknown command %s, try \\help", name)
	}
	return false
}

// run executes one filter expression. Errors print and the loop goes on.
func (s *shell) run(ctx context.Context, filter string) {
	if s.cfg.Table == "" {
		ui.PrintWarning("no table selected, use \\table <name>")
		return
	}

	q, err := buildQuery(filter, queryFlags{})
	if err != nil {
		ui.PrintError("%s", err)
		return
	}

	querier, err := s.querier()
	if err != nil {
		ui.PrintError("%s", err)
		return
	}

	if err := renderResult(querier.Execute(ctx, q)); err != nil {
		ui.PrintError("%s", err)
	}
}

// querier returns the cached querier for the current table, creating
// it on first use.
func (s *shell) querier() (*client.CachedQuerier[record], error) {
	table := s.cfg.Table
	if q, ok := s.queriers[table]; ok {
		return q, nil
	}

	exec, err := newExecutor(s.client, s.cfg, false)
	if err != nil {
		return nil, err
	}
	q := client.NewCachedQuerier[record](exec, s.store, time.Duration(s.cfg.CacheTTLSec)*time.Second)
	s.queriers[table] = q
	return q, nil
}
