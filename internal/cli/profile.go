package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dashql/internal/schema"
)

func newProfileCommand() *cobra.Command {
	var asNotation bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile the loaded tables",
		Long: `Inspect every loaded table: column types, inferred roles
(timestamp, metric, entity id, categorical), distinct counts, and
detected cross-table relationships.

With --notation, print the schema snapshot in the notation format
the plan compiler is prompted with.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openAdapter(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			profiler := schema.NewProfiler(db, logger)
			profiles, err := profiler.ProfileAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to profile tables: %w", err)
			}
			if len(profiles) == 0 {
				return fmt.Errorf("no tables loaded (run 'dashql load' first)")
			}

			out := cmd.OutOrStdout()
			if asNotation {
				fmt.Fprintln(out, schema.NotationContext(profiles))
				return nil
			}

			names := make([]string, 0, len(profiles))
			for name := range profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				prof := profiles[name]
				fmt.Fprintf(out, "%s (%d rows)\n", prof.Name, prof.RowCount)

				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Column", "Type", "Roles", "Distinct"})
				for i := range prof.Columns {
					col := &prof.Columns[i]
					t.AppendRow(table.Row{
						col.Name, col.Type, strings.Join(col.Roles(), ", "), col.DistinctCount,
					})
				}
				t.Render()
				fmt.Fprintln(out)
			}

			rels := schema.DetectRelationships(profiles)
			if len(rels) > 0 {
				fmt.Fprintln(out, "Relationships:")
				for _, rel := range rels {
					fmt.Fprintf(out, "  %s.%s -> %s.%s (%s)\n",
						rel.SourceTable, rel.SourceColumn, rel.TargetTable, rel.TargetColumn, rel.Type)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asNotation, "notation", false, "Print the compiler's schema context instead of tables")
	return cmd
}
