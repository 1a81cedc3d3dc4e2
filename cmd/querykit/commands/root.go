// Package commands implements CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/internal/version"
)

// Execute is the main entry point for the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand assembles the querykit command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "querykit",
		Short:         "Build, validate and run structured queries",
		Long:          "querykit parses filter expressions, builds validated queries and executes them against SQL backends.",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewRunCommand(),
		NewExplainCommand(),
		NewShellCommand(),
		NewIndexCommand(),
		NewInitCommand(),
		NewVersionCommand(),
	)
	return root
}
