package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dashql/internal/executor"
)

func newQueryCommand() *cobra.Command {
	var format string
	var input string

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a read-only SQL query against the warehouse",
		Long: `Execute a SELECT query against the loaded tables.

Write statements are rejected by the read-only policy before they
reach the database.`,
		Example: `  # Run SQL directly
  dashql query "SELECT region, COUNT(*) FROM orders GROUP BY region"

  # Read SQL from a file, output JSON
  dashql query -i report.sql --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var sqlQuery string
			switch {
			case len(args) > 0:
				sqlQuery = strings.Join(args, " ")
			case input != "":
				content, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", input, err)
				}
				sqlQuery = string(content)
			default:
				return fmt.Errorf("no SQL given (pass it as an argument or via --input)")
			}

			db, err := openAdapter(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			exec := executor.New(db, logger)
			return renderResult(cmd.OutOrStdout(), exec.Execute(ctx, sqlQuery), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	return cmd
}
