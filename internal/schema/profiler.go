package schema

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/leapstack-labs/dashql/internal/adapter"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Profiler builds table profiles by inspecting the live database through an
// adapter.
type Profiler struct {
	db     adapter.Adapter
	logger *slog.Logger
}

// NewProfiler creates a profiler. A nil logger discards output.
func NewProfiler(db adapter.Adapter, logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Profiler{db: db, logger: logger}
}

// ProfileAll profiles every user table in the database.
func (p *Profiler) ProfileAll(ctx context.Context) (map[string]*TableProfile, error) {
	tables, err := p.db.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	profiles := make(map[string]*TableProfile, len(tables))
	for _, name := range tables {
		profile, err := p.ProfileTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to profile table %s: %w", name, err)
		}
		profiles[name] = profile
	}
	return profiles, nil
}

// ProfileTable profiles a single table: row count plus a per-column profile.
func (p *Profiler) ProfileTable(ctx context.Context, table string) (*TableProfile, error) {
	if !identRE.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	meta, err := p.db.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, err
	}

	profile := &TableProfile{
		Name:     table,
		RowCount: meta.RowCount,
		Columns:  make([]ColumnProfile, 0, len(meta.Columns)),
	}

	for _, col := range meta.Columns {
		cp, err := p.profileColumn(ctx, table, col)
		if err != nil {
			return nil, fmt.Errorf("failed to profile column %s.%s: %w", table, col.Name, err)
		}
		profile.Columns = append(profile.Columns, *cp)
	}

	p.logger.Debug("profiled table", "table", table, "rows", profile.RowCount, "columns", len(profile.Columns))
	return profile, nil
}

func (p *Profiler) profileColumn(ctx context.Context, table string, col adapter.Column) (*ColumnProfile, error) {
	if !identRE.MatchString(col.Name) {
		return nil, fmt.Errorf("invalid column name: %q", col.Name)
	}

	cp := &ColumnProfile{
		Name:     col.Name,
		Type:     col.Type,
		Nullable: col.Nullable,
	}

	distinct, err := p.queryInt(ctx, fmt.Sprintf(`SELECT COUNT(DISTINCT "%s") FROM %s`, col.Name, table))
	if err != nil {
		return nil, err
	}
	cp.DistinctCount = distinct

	samples, err := p.querySamples(ctx, fmt.Sprintf(`SELECT DISTINCT "%s" FROM %s LIMIT 5`, col.Name, table))
	if err != nil {
		return nil, err
	}
	cp.SampleValues = samples

	if isNumericType(col.Type) || isTimestampType(col.Type) {
		if err := p.queryMinMax(ctx, table, col.Name, cp); err != nil {
			return nil, err
		}
	}

	// Role inference mirrors how the dashboard generator later decides axis
	// handling, so a name-based timestamp beats a numeric type.
	switch {
	case isTimestampType(col.Type) || looksLikeTimestamp(col.Name):
		cp.IsTimestamp = true
	case isNumericType(col.Type):
		if !looksLikeID(col.Name) {
			cp.IsMetric = true
		}
	case isStringType(col.Type):
		if looksLikeID(col.Name) {
			cp.IsEntityID = true
		} else if cp.DistinctCount < 50 {
			cp.IsCategorical = true
		}
	}

	return cp, nil
}

func (p *Profiler) queryInt(ctx context.Context, query string) (int64, error) {
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func (p *Profiler) querySamples(ctx context.Context, query string) ([]any, error) {
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		samples = append(samples, v)
	}
	return samples, rows.Err()
}

func (p *Profiler) queryMinMax(ctx context.Context, table, column string, cp *ColumnProfile) error {
	query := fmt.Sprintf(`SELECT MIN("%s"), MAX("%s") FROM %s`, column, column, table)
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	if rows.Next() {
		if err := rows.Scan(&cp.MinValue, &cp.MaxValue); err != nil {
			return err
		}
	}
	return rows.Err()
}

func isTimestampType(dtype string) bool {
	return containsAny(strings.ToLower(dtype), "timestamp", "date", "time")
}

func isNumericType(dtype string) bool {
	return containsAny(strings.ToLower(dtype),
		"integer", "bigint", "smallint", "tinyint",
		"double", "float", "real", "decimal", "numeric")
}

func isStringType(dtype string) bool {
	return containsAny(strings.ToLower(dtype), "varchar", "char", "text", "string")
}

func looksLikeID(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" ||
		strings.HasSuffix(lower, "_id") ||
		strings.HasSuffix(lower, "id") ||
		strings.HasPrefix(lower, "id_")
}

func looksLikeTimestamp(name string) bool {
	return containsAny(strings.ToLower(name),
		"date", "time", "timestamp", "created", "updated", "at", "when", "datetime")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
