package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: groupUtility,
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infof(cmd, "%s", formatVersion())
			return nil
		},
	}
}

func formatVersion() string {
	return fmt.Sprintf("storectl %s (%s, %s) %s", Version, Commit, Date, runtime.Version())
}
