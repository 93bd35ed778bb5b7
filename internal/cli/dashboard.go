package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dashql/internal/compiler"
	"github.com/leapstack-labs/dashql/internal/dashboard"
	"github.com/leapstack-labs/dashql/internal/plan"
	"github.com/leapstack-labs/dashql/internal/schema"
	"github.com/leapstack-labs/dashql/pkg/notation"
)

func newDashboardCommand() *cobra.Command {
	var title string
	var push bool
	var overview bool

	cmd := &cobra.Command{
		Use:   "dashboard [plan-file]",
		Short: "Generate a Grafana dashboard from a plan",
		Long: `Render a plan file as Grafana dashboard JSON.

By default the dashboard is printed to stdout; with --push it is
created in the configured Grafana instance instead.

With --overview, no plan file is read: the model designs a summary
dashboard for the loaded tables (requires ANTHROPIC_API_KEY).`,
		Example: `  # Print dashboard JSON for a saved plan
  dashql dashboard plan.toon

  # Push it to Grafana under a custom title
  dashql dashboard plan.toon --push --title "Regional Orders"

  # Let the model design an overview of the whole dataset
  dashql dashboard --overview --push`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var dash map[string]any
			switch {
			case overview:
				if os.Getenv("ANTHROPIC_API_KEY") == "" {
					return fmt.Errorf("ANTHROPIC_API_KEY is not set")
				}

				db, err := openAdapter(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()

				profiles, err := schema.NewProfiler(db, logger).ProfileAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to profile tables: %w", err)
				}
				if len(profiles) == 0 {
					return fmt.Errorf("no tables loaded (run 'dashql load' first)")
				}

				client := compiler.NewAnthropicClient(cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, logger)
				comp := compiler.New(client, logger)
				comp.SetSchema(profiles)

				ov, err := comp.GenerateOverview(ctx)
				if err != nil {
					return fmt.Errorf("failed to generate overview: %w", err)
				}

				requests := make([]dashboard.PanelRequest, 0, len(ov.Panels))
				for _, p := range ov.Panels {
					requests = append(requests, dashboard.PanelRequest{Spec: p, SQL: p.SQL})
				}
				dashTitle := ov.Title
				if title != "" {
					dashTitle = title
				}
				dash = dashboard.NewGenerator(cfg.DatasourceUID).GenerateMultiPanelDashboard(requests, dashTitle)

			case len(args) == 1:
				content, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read plan file: %w", err)
				}
				node, err := notation.Parse(string(content))
				if err != nil {
					return fmt.Errorf("failed to parse plan: %w", err)
				}
				p, err := plan.FromNode(node)
				if err != nil {
					return fmt.Errorf("invalid plan: %w", err)
				}
				dash = dashboard.NewGenerator(cfg.DatasourceUID).GenerateDashboard(p, title)

			default:
				return fmt.Errorf("no plan file given (or use --overview)")
			}

			if push {
				client := dashboard.NewClient(cfg.Grafana.URL, cfg.Grafana.User, cfg.Grafana.Password)
				result := client.CreateDashboard(ctx, dash)
				if !result.Success {
					return fmt.Errorf("failed to push dashboard: %s", result.Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dashboard: %s\n", result.URL)
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dash)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Dashboard title (default: derived from the plan)")
	cmd.Flags().BoolVar(&push, "push", false, "Create the dashboard in Grafana instead of printing JSON")
	cmd.Flags().BoolVar(&overview, "overview", false, "Have the model design an overview dashboard")
	return cmd
}
