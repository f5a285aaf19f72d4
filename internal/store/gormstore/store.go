// Package gormstore implements the persistence contract on top of GORM.
// It must stay externally indistinguishable from the hand-written SQL
// backend in internal/store/sqlite; the shared conformance suite holds both
// to the same semantics.
package gormstore

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Vyacheslaf/giftcert-server/internal/query"
)

// timeLayout is a fixed-width RFC 3339 format with nanosecond precision.
// Fixed width keeps lexicographic TEXT ordering identical to chronological
// ordering, which sort-by-date queries rely on. Must match the raw SQL
// backend so both read the same database files.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a GORM-backed implementation of store.Store.
type Store struct {
	db         *gorm.DB
	logger     *slog.Logger
	sortFields query.SortFields
}

// Option configures a Store.
type Option func(*Store)

// WithSortFields overrides the sortable-field allow-list used by
// FindCertificates.
func WithSortFields(fields query.SortFields) Option {
	return func(s *Store) {
		s.sortFields = fields
	}
}

// Open opens (creating if necessary) the database at path and migrates the
// schema.
func Open(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	err = db.AutoMigrate(
		&certificateModel{},
		&tagModel{},
		&certificateTagModel{},
		&userModel{},
		&orderModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	s := &Store{
		db:         db,
		logger:     logger.With("component", "gormstore"),
		sortFields: query.CertificateSortFields(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("database opened", "path", path)
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func timeValue(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
