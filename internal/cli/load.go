package cli

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var tableNameCleanRE = regexp.MustCompile(`[^a-z0-9_]+`)

// tableNameFromFile derives a table name from a CSV filename.
func tableNameFromFile(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = tableNameCleanRE.ReplaceAllString(strings.ToLower(name), "_")
	name = strings.Trim(name, "_")
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}

func newLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load CSV files into the warehouse",
		Long: `Load every CSV file from the data directory into DuckDB.

Each file becomes a table named after the file, with the schema
inferred by DuckDB's CSV reader. Existing tables are replaced.`,
		Example: `  # Load all CSVs from the configured data directory
  dashql load

  # Load from a different directory into a specific database file
  dashql load --data-dir ./exports --database warehouse.duckdb`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openAdapter(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			files, err := filepath.Glob(filepath.Join(cfg.DataDir, "*.csv"))
			if err != nil {
				return fmt.Errorf("failed to scan data directory: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no CSV files found in %s", cfg.DataDir)
			}

			for _, file := range files {
				tableName := tableNameFromFile(file)
				logger.Debug("loading csv", "file", file, "table", tableName)

				if err := db.LoadCSV(ctx, tableName, file); err != nil {
					return fmt.Errorf("failed to load %s: %w", file, err)
				}

				meta, err := db.GetTableMetadata(ctx, tableName)
				if err != nil {
					return fmt.Errorf("failed to inspect %s: %w", tableName, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s (%d rows, %d columns)\n",
					tableName, meta.RowCount, len(meta.Columns))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d tables into %s\n", len(files), cfg.Database.Path)
			return nil
		},
	}
}
