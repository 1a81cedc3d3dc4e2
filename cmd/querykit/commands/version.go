package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/internal/update"
	"github.com/satishbabariya/querykit/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			fmt.Println(info.FullString())
			if check {
				return update.CheckForUpdates(info.Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check whether a newer release exists")

	return cmd
}
