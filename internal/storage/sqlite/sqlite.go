// Package sqlite is a single-file implementation of store.Store on top of
// modernc.org/sqlite, for deployments without PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/store"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// tsLayout sorts lexically in UTC.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

// DB is a SQLite-backed store.
type DB struct {
	queries
	db *sql.DB
}

var _ store.Store = (*DB)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One writer at a time; immediate transactions then serialize program writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, multierr.Append(fmt.Errorf("applying schema: %w", err), db.Close())
	}
	return &DB{queries: queries{q: db}, db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// WithTx runs fn in an immediate transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	stx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := stx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = multierr.Append(err, fmt.Errorf("rolling back: %w", rbErr))
			}
			return
		}
		if cErr := stx.Commit(); cErr != nil {
			err = fmt.Errorf("committing transaction: %w", cErr)
		}
	}()
	return fn(&tx{queries: queries{q: stx}})
}

type tx struct {
	queries
}

var _ store.Tx = (*tx)(nil)

func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, models.ErrNotFound)
	}
	return fmt.Errorf("querying %s %v: %w", what, id, err)
}

func encodeGroups(g models.MuscleGroups) (string, error) {
	b, err := json.Marshal(g.Strings())
	if err != nil {
		return "", fmt.Errorf("encoding muscle groups: %w", err)
	}
	return string(b), nil
}

func decodeGroups(raw string) (models.MuscleGroups, error) {
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return nil, fmt.Errorf("%w: stored muscle groups %q: %v", models.ErrInvariantViolation, raw, err)
	}
	g, err := models.ParseMuscleGroups(labels)
	if err != nil {
		return nil, fmt.Errorf("%w: stored muscle groups %q: %v", models.ErrInvariantViolation, raw, err)
	}
	return g, nil
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored date %q: %w", s, err)
	}
	return t, nil
}
