// Package executor runs validated SQL against the warehouse and reports
// outcomes as values: a failing query yields a failed QueryResult, never an
// error return or a panic.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/leapstack-labs/dashql/internal/adapter"
	"github.com/leapstack-labs/dashql/internal/plan"
)

var identRE = regexp.MustCompile(`^\w+$`)

// QueryResult is the outcome of one query execution.
type QueryResult struct {
	Success  bool             `json:"success"`
	Data     []map[string]any `json:"data"`
	Columns  []string         `json:"columns"`
	RowCount int              `json:"row_count"`
	Error    string           `json:"error,omitempty"`
}

func failed(msg string) *QueryResult {
	return &QueryResult{Success: false, Data: []map[string]any{}, Columns: []string{}, Error: msg}
}

// Executor executes queries through a database adapter.
type Executor struct {
	db     adapter.Adapter
	logger *slog.Logger
}

// New creates an executor. A nil logger discards output.
func New(db adapter.Adapter, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{db: db, logger: logger}
}

// Execute runs a SQL query. The read-only policy is enforced first; a
// violation, a driver error, or an expired context all come back as a
// failed result.
func (e *Executor) Execute(ctx context.Context, sql string) *QueryResult {
	return e.execute(ctx, sql, true)
}

func (e *Executor) execute(ctx context.Context, sql string, validate bool) *QueryResult {
	if validate {
		if err := plan.CheckReadOnly(sql); err != nil {
			return failed(err.Error())
		}
	}

	rows, err := e.db.Query(ctx, sql)
	if err != nil {
		e.logger.Debug("query failed", "error", err)
		return failed(err.Error())
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return failed(err.Error())
	}

	data := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return failed(err.Error())
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return failed(err.Error())
	}

	return &QueryResult{
		Success:  true,
		Data:     data,
		Columns:  columns,
		RowCount: len(data),
	}
}

// ExecutePlan runs the query of an analytical plan. An infeasible plan
// fails with its stated reason; a plan without primary SQL falls back to
// the first panel's query.
func (e *Executor) ExecutePlan(ctx context.Context, p *plan.Plan) *QueryResult {
	if !p.Feasible {
		reason := p.Reason
		if reason == "" {
			reason = "Query is not feasible"
		}
		return failed(reason)
	}

	sql := p.SQL
	if sql == "" {
		for i := range p.Viz {
			if p.Viz[i].SQL != "" {
				sql = p.Viz[i].SQL
				break
			}
		}
	}
	if sql == "" {
		return failed("No SQL query in plan")
	}

	return e.Execute(ctx, sql)
}

// TableSample returns up to limit rows from a table.
func (e *Executor) TableSample(ctx context.Context, table string, limit int) *QueryResult {
	if !identRE.MatchString(table) {
		return failed("Invalid table name")
	}
	if limit <= 0 {
		limit = 10
	}
	return e.execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit), false)
}

// ColumnStats returns total, distinct, and null counts for a column.
func (e *Executor) ColumnStats(ctx context.Context, table, column string) *QueryResult {
	if !identRE.MatchString(table) || !identRE.MatchString(column) {
		return failed("Invalid table or column name")
	}
	sql := fmt.Sprintf(`SELECT
		COUNT(*) AS total_count,
		COUNT(DISTINCT "%s") AS distinct_count,
		COUNT(*) - COUNT("%s") AS null_count
	FROM %s`, column, column, table)
	return e.execute(ctx, sql, false)
}
