package executor

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dashql/internal/adapter"
	"github.com/leapstack-labs/dashql/internal/plan"
)

// mockDB bridges a sqlmock-backed *sql.DB into the adapter interface.
type mockDB struct {
	db *sql.DB
}

func (m *mockDB) Connect(ctx context.Context, cfg adapter.Config) error { return nil }
func (m *mockDB) Close() error                                          { return m.db.Close() }
func (m *mockDB) DialectName() string                                   { return "mock" }
func (m *mockDB) ListTables(ctx context.Context) ([]string, error)      { return nil, nil }

func (m *mockDB) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return nil, errors.New("not implemented")
}

func (m *mockDB) LoadCSV(ctx context.Context, tableName, filePath string) error {
	return errors.New("not implemented")
}

func (m *mockDB) Exec(ctx context.Context, sqlStr string) error {
	_, err := m.db.ExecContext(ctx, sqlStr)
	return err
}

func (m *mockDB) Query(ctx context.Context, sqlStr string) (*adapter.Rows, error) {
	rows, err := m.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	return &adapter.Rows{Rows: rows}, nil
}

func newTestExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(&mockDB{db: db}, nil), mock
}

func TestExecuteSuccess(t *testing.T) {
	exec, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT region, total FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"region", "total"}).
			AddRow("north", 120.5).
			AddRow("south", 88.0))

	res := exec.Execute(context.Background(), "SELECT region, total FROM orders")
	require.True(t, res.Success, "error: %s", res.Error)
	assert.Equal(t, []string{"region", "total"}, res.Columns)
	assert.Equal(t, 2, res.RowCount)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "north", res.Data[0]["region"])
	assert.Equal(t, 120.5, res.Data[0]["total"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteRejectsWrites(t *testing.T) {
	exec, mock := newTestExecutor(t)

	res := exec.Execute(context.Background(), "DELETE FROM orders")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "DELETE")
	assert.Empty(t, res.Data)

	// The query never reaches the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDriverErrorBecomesFailedResult(t *testing.T) {
	exec, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT nope FROM orders").
		WillReturnError(errors.New(`column "nope" does not exist`))

	res := exec.Execute(context.Background(), "SELECT nope FROM orders")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "nope")
	assert.Equal(t, 0, res.RowCount)
}

func TestExecuteCancelledContext(t *testing.T) {
	exec, _ := newTestExecutor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := exec.Execute(ctx, "SELECT region FROM orders")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "context canceled")
	assert.Equal(t, 0, res.RowCount)
	assert.Empty(t, res.Data)
}

func TestExecutePlanInfeasible(t *testing.T) {
	exec, _ := newTestExecutor(t)

	res := exec.ExecutePlan(context.Background(), &plan.Plan{
		Feasible: false,
		Reason:   "no forecast data available",
	})
	assert.False(t, res.Success)
	assert.Equal(t, "no forecast data available", res.Error)

	res = exec.ExecutePlan(context.Background(), &plan.Plan{Feasible: false})
	assert.Equal(t, "Query is not feasible", res.Error)
}

func TestExecutePlanFallsBackToPanelSQL(t *testing.T) {
	exec, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT COUNT(*) FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	res := exec.ExecutePlan(context.Background(), &plan.Plan{
		Feasible: true,
		Viz: []plan.Panel{
			{Type: plan.PanelStat, Title: "first", SQL: "SELECT COUNT(*) FROM orders"},
			{Type: plan.PanelTable, Title: "second", SQL: "SELECT * FROM orders"},
		},
	})
	require.True(t, res.Success, "error: %s", res.Error)
	assert.Equal(t, 1, res.RowCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutePlanNoSQL(t *testing.T) {
	exec, _ := newTestExecutor(t)
	res := exec.ExecutePlan(context.Background(), &plan.Plan{Feasible: true})
	assert.False(t, res.Success)
	assert.Equal(t, "No SQL query in plan", res.Error)
}

func TestTableSample(t *testing.T) {
	exec, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT * FROM orders LIMIT 3").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("o-1"))

	res := exec.TableSample(context.Background(), "orders", 3)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.RowCount)

	bad := exec.TableSample(context.Background(), "orders; DROP TABLE x", 3)
	assert.False(t, bad.Success)
	assert.Equal(t, "Invalid table name", bad.Error)
}

func TestColumnStats(t *testing.T) {
	// Default regexp matcher here; the stats SQL spans several lines.
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	exec := New(&mockDB{db: db}, nil)

	mock.ExpectQuery("total_count").
		WillReturnRows(sqlmock.NewRows([]string{"total_count", "distinct_count", "null_count"}).
			AddRow(int64(100), int64(40), int64(2)))

	res := exec.ColumnStats(context.Background(), "orders", "region")
	require.True(t, res.Success, "error: %s", res.Error)
	require.Len(t, res.Data, 1)
	assert.Equal(t, int64(100), res.Data[0]["total_count"])

	bad := exec.ColumnStats(context.Background(), "orders", `region"`)
	assert.False(t, bad.Success)
	assert.Equal(t, "Invalid table or column name", bad.Error)
}
