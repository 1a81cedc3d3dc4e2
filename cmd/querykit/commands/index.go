package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/index"
	"github.com/satishbabariya/querykit/internal/config"
	"github.com/satishbabariya/querykit/internal/ui"
	"github.com/satishbabariya/querykit/query/qerr"
)

const indexBatchSize = 100

// NewIndexCommand creates the index command group.
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and query the attribute index",
		Long:  "Index maintains an inverted attribute index over a JSON entity file, kept separately from the SQL backends.",
	}

	cmd.AddCommand(
		newIndexBuildCommand(),
		newIndexQueryCommand(),
		newIndexStatsCommand(),
	)
	return cmd
}

// indexPath resolves the index file location from the flag or config.
func indexPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.IndexPath, nil
}

func loadIndex(path string) (*index.AttributeIndex, error) {
	store, err := index.NewFileStore(path)
	if err != nil {
		return nil, err
	}
	ix := index.New()
	if err := ix.Load(store); err != nil {
		return nil, err
	}
	return ix, nil
}

func newIndexBuildCommand() *cobra.Command {
	var indexFile string
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "build <entities.json>",
		Short: "Build the index from a JSON entity file",
		Long:  "Build reads a JSON array of {id, attributes} records, indexes every attribute and writes the index file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexBuild(args[0], indexFile, watchMode)
		},
	}

	cmd.Flags().StringVar(&indexFile, "index", "", "Index file location (default from config)")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Rebuild when the entity file changes")

	return cmd
}

func runIndexBuild(entitiesPath, indexOverride string, watchMode bool) error {
	path, err := indexPath(indexOverride)
	if err != nil {
		return err
	}

	rebuild := func() error {
		entities, err := readEntities(entitiesPath)
		if err != nil {
			return err
		}

		ix := index.New()
		bar, _ := ui.PrintProgressBar(len(entities)).Start()
		for start := 0; start < len(entities); start += indexBatchSize {
			end := min(start+indexBatchSize, len(entities))
			ix.IndexEntities(entities[start:end])
			bar.Add(end - start)
		}
		bar.Stop()

		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		store, err := index.NewFileStore(path)
		if err != nil {
			return err
		}
		if err := ix.Save(store); err != nil {
			return err
		}

		stats := ix.Statistics()
		ui.PrintSuccess("indexed %d entities (%d keys, %d postings) into %s",
			stats.EntityCount, stats.KeyCount, stats.PostingCount, path)
		return nil
	}

	if err := rebuild(); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	watcher, err := index.Watch(entitiesPath, rebuild)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	ui.PrintSuccess("Watching %s for changes... (Press Ctrl+C to stop)", entitiesPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ui.PrintInfo("\nStopping watch mode...")
	return nil
}

func readEntities(path string) ([]index.Entity, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}
	var entities []index.Entity
	if err := json.Unmarshal(doc, &entities); err != nil {
		return nil, qerr.Wrap(qerr.KindInvalidSyntax, err, "parse entities %s", path)
	}
	return entities, nil
}

func newIndexQueryCommand() *cobra.Command {
	var indexFile string
	var mode string

	cmd := &cobra.Command{
		Use:   "query <attr=value> [attr=value...]",
		Short: "Find entity IDs by attribute values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexQuery(args, indexFile, mode)
		},
	}

	cmd.Flags().StringVar(&indexFile, "index", "", "Index file location (default from config)")
	cmd.Flags().StringVar(&mode, "mode", "and", "Combine lookups with and / or")

	return cmd
}

func runIndexQuery(args []string, indexOverride, mode string) error {
	path, err := indexPath(indexOverride)
	if err != nil {
		return err
	}

	queries := make([]index.AttributeQuery, 0, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return qerr.New(qerr.KindInvalidValue, "bad lookup %q: want attr=value", arg)
		}
		queries = append(queries, index.AttributeQuery{Name: name, Value: value})
	}

	var combine index.Mode
	switch strings.ToLower(mode) {
	case "and":
		combine = index.ModeAnd
	case "or":
		combine = index.ModeOr
	default:
		return qerr.New(qerr.KindInvalidValue, "bad mode %q: want and / or", mode)
	}

	ix, err := loadIndex(path)
	if err != nil {
		return err
	}

	ids, err := ix.FindByAttributes(queries, combine)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ui.PrintInfo("no matches")
		return nil
	}
	ui.PrintList(ids)
	ui.PrintInfo("%d matching entities", len(ids))
	return nil
}

func newIndexStatsCommand() *cobra.Command {
	var indexFile string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexStats(indexFile)
		},
	}

	cmd.Flags().StringVar(&indexFile, "index", "", "Index file location (default from config)")

	return cmd
}

func runIndexStats(indexOverride string) error {
	path, err := indexPath(indexOverride)
	if err != nil {
		return err
	}

	ix, err := loadIndex(path)
	if err != nil {
		return err
	}

	stats := ix.Statistics()
	ui.PrintBox("Index", fmt.Sprintf(
		"file      %s\nentities  %d\nkeys      %d\npostings  %d",
		path, stats.EntityCount, stats.KeyCount, stats.PostingCount))
	return nil
}
