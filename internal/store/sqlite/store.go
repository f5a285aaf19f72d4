// Package sqlite provides the hand-written SQL implementation of the gift
// certificate store, backed by SQLite through database/sql.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vyacheslaf/giftcert-server/internal/query"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is a fixed-width RFC3339 variant. All timestamps are stored in
// UTC with this layout so that lexicographic column order equals
// chronological order, which ORDER BY on timestamp columns relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store provides SQLite-backed persistence using hand-written SQL.
type Store struct {
	db         *sql.DB
	logger     *slog.Logger
	sortFields query.SortFields
}

// Option configures a Store.
type Option func(*Store)

// WithSortFields overrides the allow-list mapping sortable certificate
// fields to storage columns.
func WithSortFields(fields query.SortFields) Option {
	return func(s *Store) {
		s.sortFields = fields
	}
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and applies the schema.
func Open(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	s := &Store{
		db:         db,
		logger:     logger,
		sortFields: query.CertificateSortFields(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dbtx abstracts *sql.DB and *sql.Tx so read helpers can run either inside
// or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// formatTime formats a time.Time for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// parseNullableTime parses an optional timestamp column.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullTimeString returns a sql.NullString from a *time.Time.
func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
