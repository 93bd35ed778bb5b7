package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dashql/internal/compiler"
	"github.com/leapstack-labs/dashql/internal/dashboard"
	"github.com/leapstack-labs/dashql/internal/executor"
	"github.com/leapstack-labs/dashql/internal/history"
	"github.com/leapstack-labs/dashql/internal/schema"
	"github.com/leapstack-labs/dashql/internal/server"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Serve the question-to-dashboard pipeline over HTTP.

Endpoints: POST /api/ask, POST /api/query, GET /api/tables,
GET /api/tables/{name}/sample, GET /api/history, GET /healthz.

The compiler endpoints require ANTHROPIC_API_KEY; without it the
server still runs but /api/ask returns 503.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}

			db, err := openAdapter(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			var comp *compiler.Compiler
			if os.Getenv("ANTHROPIC_API_KEY") != "" {
				profiles, err := schema.NewProfiler(db, logger).ProfileAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to profile tables: %w", err)
				}
				if len(profiles) > 0 {
					client := compiler.NewAnthropicClient(cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, logger)
					comp = compiler.New(client, logger)
					comp.SetSchema(profiles)
				} else {
					logger.Warn("no tables loaded, /api/ask disabled (run 'dashql load' first)")
				}
			} else {
				logger.Warn("ANTHROPIC_API_KEY not set, /api/ask disabled")
			}

			if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create state directory: %w", err)
				}
			}
			store := history.NewStore(logger)
			if err := store.Open(cfg.StatePath); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.InitSchema(); err != nil {
				return err
			}

			srv := server.New(server.Config{
				DB:        db,
				Executor:  executor.New(db, logger),
				Compiler:  comp,
				Generator: dashboard.NewGenerator(cfg.DatasourceUID),
				Grafana:   dashboard.NewClient(cfg.Grafana.URL, cfg.Grafana.User, cfg.Grafana.Password),
				History:   store,
				Port:      cfg.Server.Port,
				Logger:    logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on")
	return cmd
}
