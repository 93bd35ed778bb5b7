package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display dashql version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dashql v%s (%s)\n", Version, GitCommit)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Natural language analytics built with Go and DuckDB")
		},
	}
}
