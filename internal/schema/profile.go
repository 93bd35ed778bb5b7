// Package schema profiles the loaded warehouse: per-column roles and
// statistics, cross-table relationship detection, and the notation-formatted
// schema context handed to the plan compiler.
package schema

// ColumnProfile describes one column and its inferred role. The role flags
// are mutually exclusive by construction: timestamp wins over metric, which
// wins over the string-typed roles.
type ColumnProfile struct {
	Name     string
	Type     string
	Nullable bool

	IsTimestamp   bool
	IsMetric      bool
	IsEntityID    bool
	IsCategorical bool

	DistinctCount int64
	SampleValues  []any
	MinValue      any
	MaxValue      any
}

// TableProfile describes one table.
type TableProfile struct {
	Name     string
	RowCount int64
	Columns  []ColumnProfile
}

// Roles lists the inferred roles of a column.
func (c *ColumnProfile) Roles() []string {
	var roles []string
	if c.IsTimestamp {
		roles = append(roles, "timestamp")
	}
	if c.IsMetric {
		roles = append(roles, "metric")
	}
	if c.IsEntityID {
		roles = append(roles, "entity_id")
	}
	if c.IsCategorical {
		roles = append(roles, "categorical")
	}
	return roles
}

// GetColumn returns the profile of the named column, or nil.
func (t *TableProfile) GetColumn(name string) *ColumnProfile {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// TimestampColumns returns the names of timestamp columns.
func (t *TableProfile) TimestampColumns() []string {
	return t.columnsWhere(func(c *ColumnProfile) bool { return c.IsTimestamp })
}

// MetricColumns returns the names of metric columns.
func (t *TableProfile) MetricColumns() []string {
	return t.columnsWhere(func(c *ColumnProfile) bool { return c.IsMetric })
}

// EntityColumns returns the names of entity-id columns.
func (t *TableProfile) EntityColumns() []string {
	return t.columnsWhere(func(c *ColumnProfile) bool { return c.IsEntityID })
}

// CategoricalColumns returns the names of categorical columns.
func (t *TableProfile) CategoricalColumns() []string {
	return t.columnsWhere(func(c *ColumnProfile) bool { return c.IsCategorical })
}

func (t *TableProfile) columnsWhere(pred func(*ColumnProfile) bool) []string {
	var names []string
	for i := range t.Columns {
		if pred(&t.Columns[i]) {
			names = append(names, t.Columns[i].Name)
		}
	}
	return names
}

// Relationship is a detected link between two tables.
type Relationship struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string

	// Type is "fk" or "polymorphic".
	Type string

	Confidence string
}
