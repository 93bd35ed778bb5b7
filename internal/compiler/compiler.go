package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dashql/internal/plan"
	"github.com/leapstack-labs/dashql/internal/schema"
	"github.com/leapstack-labs/dashql/pkg/notation"
)

const defaultMaxRetries = 3

// Compiler turns natural language questions into validated query plans. Each
// attempt round-trips through the model, the notation parser and the plan
// validator; failures are fed back to the model as correction context.
type Compiler struct {
	client        Client
	schemaContext string
	schema        plan.Schema
	maxRetries    int
	logger        *slog.Logger
}

// Result is the outcome of a successful compilation. ValidationError is set
// when retries were exhausted on a plan that parsed but failed validation;
// callers can still inspect the plan to report what went wrong.
type Result struct {
	Plan            *plan.Plan
	Notation        string
	Attempts        int
	ValidationError string
}

// Overview is a model-proposed dashboard layout for an unfamiliar dataset.
type Overview struct {
	Title  string
	Panels []plan.Panel
}

func New(client Client, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{
		client:     client,
		maxRetries: defaultMaxRetries,
		logger:     logger,
	}
}

// SetSchema installs the profiled tables the compiler prompts against and
// validates plans with.
func (c *Compiler) SetSchema(profiles map[string]*schema.TableProfile) {
	c.schemaContext = schema.NotationContext(profiles)
	c.schema = schema.PlanSchema(profiles)
}

// SetMaxRetries overrides the retry budget. Values below zero are ignored.
func (c *Compiler) SetMaxRetries(n int) {
	if n >= 0 {
		c.maxRetries = n
	}
}

// Compile asks the model for a plan answering question and validates it. An
// infeasible plan is a successful outcome; the caller decides how to present
// it.
func (c *Compiler) Compile(ctx context.Context, question string) (*Result, error) {
	if c.schemaContext == "" {
		return nil, fmt.Errorf("no schema loaded: profile tables before compiling")
	}

	system := buildSystemPrompt(c.schemaContext)
	user := "Question: " + question

	var lastErr string
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		prompt := user
		if lastErr != "" {
			prompt = user + "\n\nPrevious attempt failed with error: " + lastErr +
				". Please correct this and output a valid plan."
			c.logger.Debug("retrying compilation", "attempt", attempt, "last_error", lastErr)
		}

		raw, err := c.client.Complete(ctx, system, prompt)
		if err != nil {
			return nil, fmt.Errorf("plan completion failed: %w", err)
		}
		text := ExtractNotation(raw)

		node, err := notation.Parse(text)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		p, err := plan.FromNode(node)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		if p.Feasible && !hasSQL(p) {
			lastErr = "plan missing required 'sql' field (or panel-level sql)"
			continue
		}
		if err := plan.Validate(p, c.schema); err != nil {
			lastErr = err.Error()
			if attempt == c.maxRetries+1 {
				return &Result{Plan: p, Notation: text, Attempts: attempt, ValidationError: lastErr}, nil
			}
			continue
		}
		return &Result{Plan: p, Notation: text, Attempts: attempt}, nil
	}
	return nil, fmt.Errorf("no valid plan after %d attempts: %s", c.maxRetries+1, lastErr)
}

// GenerateOverview asks the model for a multi-panel summary dashboard of the
// loaded schema.
func (c *Compiler) GenerateOverview(ctx context.Context) (*Overview, error) {
	if c.schemaContext == "" {
		return nil, fmt.Errorf("no schema loaded: profile tables before compiling")
	}

	raw, err := c.client.Complete(ctx, buildOverviewPrompt(c.schemaContext),
		"Design an overview dashboard for this dataset.")
	if err != nil {
		return nil, fmt.Errorf("overview completion failed: %w", err)
	}

	node, err := notation.Parse(ExtractNotation(raw))
	if err != nil {
		return nil, fmt.Errorf("overview response did not parse: %w", err)
	}
	if node.Kind != notation.KindObject {
		return nil, fmt.Errorf("overview response is not an object")
	}

	ov := &Overview{Title: "Dataset Overview"}
	if t, ok := node.Obj.Get("title"); ok && t.Kind == notation.KindString {
		ov.Title = t.Str
	}
	panels, ok := node.Obj.Get("panels")
	if !ok || panels.Kind != notation.KindArray {
		return nil, fmt.Errorf("overview response has no panels array")
	}
	for i, elem := range panels.Elems {
		p, err := plan.PanelFromNode(elem)
		if err != nil {
			return nil, fmt.Errorf("overview panel %d: %w", i, err)
		}
		ov.Panels = append(ov.Panels, *p)
	}
	return ov, nil
}

func hasSQL(p *plan.Plan) bool {
	if strings.TrimSpace(p.SQL) != "" {
		return true
	}
	for _, panel := range p.Viz {
		if strings.TrimSpace(panel.SQL) != "" {
			return true
		}
	}
	return false
}
