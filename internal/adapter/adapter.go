// Package adapter provides the database boundary for the analytics
// pipeline: a small interface over an embedded analytical engine plus a
// registry of named implementations.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the settings for opening a database.
type Config struct {
	// Type selects the registered adapter implementation (e.g., "duckdb").
	Type string

	// Path is the database file path. Use ":memory:" for an in-memory
	// database.
	Path string

	// Options contains additional driver-specific options.
	Options map[string]string
}

// Column describes one column of a table.
type Column struct {
	Name string

	// Type is the engine's reported data type.
	Type string

	Nullable bool

	// Position is the ordinal position of the column in the table.
	Position int
}

// Metadata holds metadata about a table.
type Metadata struct {
	Name    string
	Columns []Column

	// RowCount is the number of rows at the time of inspection.
	RowCount int64
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter is the interface every database implementation provides. All
// blocking operations take a context.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// ListTables returns the names of the user tables in the database.
	ListTables(ctx context.Context) ([]string, error)

	// GetTableMetadata retrieves column and row-count metadata for a table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV loads a CSV file into a table, creating or replacing the
	// table with an inferred schema.
	LoadCSV(ctx context.Context, tableName string, filePath string) error

	// DialectName returns the SQL dialect name (e.g., "duckdb").
	DialectName() string
}
