// Package cli provides the command-line interface for dashql.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dashql/internal/adapter"
	"github.com/leapstack-labs/dashql/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashql",
		Short: "dashql - natural language analytics dashboards",
		Long: `dashql turns natural language questions into SQL query plans,
runs them against a DuckDB warehouse, and renders the answers as
Grafana dashboards.

Load CSV files, profile the schema, then ask questions in plain
English from the command line or over HTTP.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger = newLogger(cfg.Verbose)
			if cfg.Verbose {
				if configFile := config.ConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Natural language analytics built with Go and DuckDB
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dashql.yaml)")
	rootCmd.PersistentFlags().String("database", "", "Path to DuckDB database (or :memory:)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory containing CSV files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newLoadCommand())
	rootCmd.AddCommand(newProfileCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newDashboardCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

// openAdapter validates the database config, creates the adapter, and
// connects. The caller closes it.
func openAdapter(ctx context.Context) (adapter.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	acfg := adapter.Config{
		Type: strings.ToLower(cfg.Database.Type),
		Path: cfg.Database.Path,
	}
	db, err := adapter.New(acfg)
	if err != nil {
		return nil, err
	}
	if err := db.Connect(ctx, acfg); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
