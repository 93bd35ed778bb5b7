// Package history persists answered questions and their outcomes in a local
// SQLite database so past plans can be reviewed and replayed.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS questions (
    id          TEXT PRIMARY KEY,
    question    TEXT NOT NULL,
    plan        TEXT NOT NULL,
    success     INTEGER NOT NULL,
    row_count   INTEGER NOT NULL DEFAULT 0,
    error       TEXT,
    asked_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_asked_at ON questions (asked_at DESC);
`

// Entry is one answered question.
type Entry struct {
	ID       string    `json:"id"`
	Question string    `json:"question"`
	Plan     string    `json:"plan"`
	Success  bool      `json:"success"`
	RowCount int       `json:"row_count"`
	Error    string    `json:"error,omitempty"`
	AskedAt  time.Time `json:"asked_at"`
}

// Store is a SQLite-backed question log.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the question log table if it does not exist.
func (s *Store) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Record stores one answered question and returns the entry with its
// generated ID and timestamp filled in.
func (s *Store) Record(question, planText string, success bool, rowCount int, errMsg string) (*Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	entry := &Entry{
		ID:       uuid.New().String(),
		Question: question,
		Plan:     planText,
		Success:  success,
		RowCount: rowCount,
		Error:    errMsg,
		AskedAt:  time.Now().UTC(),
	}

	s.logger.Debug("recording question", slog.String("id", entry.ID), slog.Bool("success", success))

	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}
	_, err := s.db.Exec(
		`INSERT INTO questions (id, question, plan, success, row_count, error, asked_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Question, entry.Plan, entry.Success, entry.RowCount, errPtr, entry.AskedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record question: %w", err)
	}
	return entry, nil
}

// Recent returns the most recent entries, newest first. A limit of zero or
// less defaults to 20.
func (s *Store) Recent(limit int) ([]*Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, question, plan, success, row_count, error, asked_at FROM questions ORDER BY asked_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var errMsg sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Plan, &entry.Success, &entry.RowCount, &errMsg, &entry.AskedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Error = errMsg.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

// Get retrieves a single entry by ID.
func (s *Store) Get(id string) (*Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	entry := &Entry{}
	var errMsg sql.NullString
	err := s.db.QueryRow(
		`SELECT id, question, plan, success, row_count, error, asked_at FROM questions WHERE id = ?`,
		id,
	).Scan(&entry.ID, &entry.Question, &entry.Plan, &entry.Success, &entry.RowCount, &errMsg, &entry.AskedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("history entry not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	entry.Error = errMsg.String
	return entry, nil
}
