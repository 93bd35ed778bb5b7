package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dashql/internal/compiler"
	"github.com/leapstack-labs/dashql/internal/dashboard"
	"github.com/leapstack-labs/dashql/internal/executor"
	"github.com/leapstack-labs/dashql/internal/history"
	"github.com/leapstack-labs/dashql/internal/plan"
	"github.com/leapstack-labs/dashql/internal/schema"
)

func newAskCommand() *cobra.Command {
	var format string
	var showPlan bool
	var push bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a natural language question",
		Long: `Compile a natural language question into a query plan, run it
against the warehouse, and print the answer.

With --push, the answer is also rendered as a Grafana dashboard and
pushed to the configured Grafana instance.

Requires ANTHROPIC_API_KEY in the environment.`,
		Example: `  dashql ask "What are the top 5 regions by total order value?"

  # Show the compiled plan and push a dashboard
  dashql ask --show-plan --push "How many orders per day last month?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.Join(args, " ")

			if os.Getenv("ANTHROPIC_API_KEY") == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY is not set")
			}

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

			client := compiler.NewAnthropicClient(cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, logger)
			comp := compiler.New(client, logger)
			comp.SetSchema(profiles)

			res, err := comp.Compile(ctx, question)
			if err != nil {
				return fmt.Errorf("failed to compile question: %w", err)
			}

			out := cmd.OutOrStdout()
			if showPlan {
				fmt.Fprintln(out, res.Notation)
				fmt.Fprintln(out)
			}
			if res.ValidationError != "" {
				fmt.Fprintf(out, "Warning: plan failed validation: %s\n", res.ValidationError)
			}

			if !res.Plan.Feasible {
				reason := res.Plan.Reason
				if reason == "" {
					reason = "Cannot answer this question"
				}
				fmt.Fprintf(out, "Cannot answer: %s\n", reason)
				recordAsk(question, res.Notation, false, 0, reason)
				return nil
			}

			exec := executor.New(db, logger)
			result := exec.ExecutePlan(ctx, res.Plan)
			if err := renderResult(out, result, format); err != nil {
				return err
			}
			recordAsk(question, res.Notation, result.Success, result.RowCount, result.Error)

			if push && result.Success {
				url, err := pushDashboard(ctx, res.Plan, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Dashboard: %s\n", url)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")
	cmd.Flags().BoolVar(&showPlan, "show-plan", false, "Print the compiled plan")
	cmd.Flags().BoolVar(&push, "push", false, "Push a dashboard to Grafana")
	return cmd
}

// recordAsk stores the outcome in the question history. Failures are logged,
// not fatal.
func recordAsk(question, planText string, success bool, rowCount int, errMsg string) {
	store := history.NewStore(logger)
	if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("failed to create state directory", "error", err)
			return
		}
	}
	if err := store.Open(cfg.StatePath); err != nil {
		logger.Warn("failed to open history", "error", err)
		return
	}
	defer func() { _ = store.Close() }()
	if err := store.InitSchema(); err != nil {
		logger.Warn("failed to init history schema", "error", err)
		return
	}
	if _, err := store.Record(question, planText, success, rowCount, errMsg); err != nil {
		logger.Warn("failed to record history", "error", err)
	}
}

// pushDashboard generates a dashboard for the plan and pushes it to Grafana.
func pushDashboard(ctx context.Context, p *plan.Plan, title string) (string, error) {
	client := dashboard.NewClient(cfg.Grafana.URL, cfg.Grafana.User, cfg.Grafana.Password)
	if !client.Health(ctx) {
		return "", fmt.Errorf("grafana is not reachable at %s", cfg.Grafana.URL)
	}

	gen := dashboard.NewGenerator(cfg.DatasourceUID)
	push := client.CreateDashboard(ctx, gen.GenerateDashboard(p, title))
	if !push.Success {
		return "", fmt.Errorf("failed to push dashboard: %s", push.Error)
	}
	return push.URL, nil
}
