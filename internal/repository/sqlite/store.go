// Package sqlite implements the repository interfaces on an embedded SQLite
// database through database/sql and the modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// New returns the SQLite-backed repository set. The schema is expected to be
// migrated already (see persistence.RunSQLiteMigrations).
func New(db *sql.DB) repository.Repositories {
	return repository.Repositories{
		Departments: &departmentRepository{db: db},
		Roles:       &roleRepository{db: db},
		Categories:  &categoryRepository{db: db},
		Users:       &userRepository{db: db},
		Tickets:     &ticketRepository{db: db},
		History:     &historyRepository{db: db},
		TimeLogs:    &timeLogRepository{db: db},
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Timestamps are stored as unix milliseconds in UTC.
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func toNullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
