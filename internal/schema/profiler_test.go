package schema

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dashql/internal/adapter"
)

// mockDB adapts a sqlmock-backed *sql.DB to the adapter interface so the
// profiler can be tested without a real engine.
type mockDB struct {
	db   *sql.DB
	meta map[string]*adapter.Metadata
}

func (m *mockDB) Connect(ctx context.Context, cfg adapter.Config) error { return nil }
func (m *mockDB) Close() error                                          { return m.db.Close() }
func (m *mockDB) DialectName() string                                   { return "mock" }

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

func (m *mockDB) ListTables(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.meta))
	for name := range m.meta {
		names = append(names, name)
	}
	return names, nil
}

func (m *mockDB) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return m.meta[table], nil
}

func (m *mockDB) LoadCSV(ctx context.Context, tableName, filePath string) error { return nil }

func TestProfileTableInfersRoles(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	// region: low-cardinality VARCHAR
	mock.ExpectQuery(`SELECT COUNT(DISTINCT "region") FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT DISTINCT "region" FROM orders LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"region"}).AddRow("north").AddRow("south").AddRow(nil))

	// total: numeric metric with min/max
	mock.ExpectQuery(`SELECT COUNT(DISTINCT "total") FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(90))
	mock.ExpectQuery(`SELECT DISTINCT "total" FROM orders LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(10.5).AddRow(99.0))
	mock.ExpectQuery(`SELECT MIN("total"), MAX("total") FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(1.0, 250.0))

	// ship_date: timestamp, gets min/max
	mock.ExpectQuery(`SELECT COUNT(DISTINCT "ship_date") FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery(`SELECT DISTINCT "ship_date" FROM orders LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"ship_date"}).AddRow("2026-01-02"))
	mock.ExpectQuery(`SELECT MIN("ship_date"), MAX("ship_date") FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow("2026-01-01", "2026-06-30"))

	// customer_id: id-shaped VARCHAR
	mock.ExpectQuery(`SELECT COUNT(DISTINCT "customer_id") FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(88))
	mock.ExpectQuery(`SELECT DISTINCT "customer_id" FROM orders LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id"}).AddRow("c-1").AddRow("c-2"))

	fake := &mockDB{
		db: db,
		meta: map[string]*adapter.Metadata{
			"orders": {
				Name:     "orders",
				RowCount: 100,
				Columns: []adapter.Column{
					{Name: "region", Type: "VARCHAR", Nullable: true},
					{Name: "total", Type: "DOUBLE"},
					{Name: "ship_date", Type: "DATE"},
					{Name: "customer_id", Type: "VARCHAR"},
				},
			},
		},
	}

	profile, err := NewProfiler(fake, nil).ProfileTable(context.Background(), "orders")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(100), profile.RowCount)
	require.Len(t, profile.Columns, 4)

	region := profile.GetColumn("region")
	require.NotNil(t, region)
	assert.True(t, region.IsCategorical)
	assert.Equal(t, int64(4), region.DistinctCount)
	assert.Equal(t, []any{"north", "south"}, region.SampleValues)

	total := profile.GetColumn("total")
	require.NotNil(t, total)
	assert.True(t, total.IsMetric)
	assert.Equal(t, 1.0, total.MinValue)
	assert.Equal(t, 250.0, total.MaxValue)

	shipDate := profile.GetColumn("ship_date")
	require.NotNil(t, shipDate)
	assert.True(t, shipDate.IsTimestamp)

	customerID := profile.GetColumn("customer_id")
	require.NotNil(t, customerID)
	assert.True(t, customerID.IsEntityID)
	assert.False(t, customerID.IsCategorical)
}

func TestProfileTableRejectsBadName(t *testing.T) {
	_, err := NewProfiler(&mockDB{}, nil).ProfileTable(context.Background(), "orders; DROP TABLE x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestRoleClassifiers(t *testing.T) {
	assert.True(t, looksLikeID("id"))
	assert.True(t, looksLikeID("customer_id"))
	assert.True(t, looksLikeID("orderid"))
	assert.False(t, looksLikeID("region"))

	assert.True(t, looksLikeTimestamp("created_at"))
	assert.True(t, looksLikeTimestamp("ship_date"))
	assert.False(t, looksLikeTimestamp("region"))

	assert.True(t, isNumericType("BIGINT"))
	assert.True(t, isNumericType("DECIMAL(10,2)"))
	assert.False(t, isNumericType("VARCHAR"))

	assert.True(t, isTimestampType("TIMESTAMP WITH TIME ZONE"))
	assert.True(t, isStringType("VARCHAR"))
}
