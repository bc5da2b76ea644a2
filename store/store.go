// Package store persists categories, event types and time records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/itimeapp/itime/internal/apperr"
)

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = &apperr.Error{Message: "%s not found: %s"}

	errDatabase = &apperr.Error{Message: "database %s failed"}
)

// Client is a SQLite database client.
type Client struct {
	db *sql.DB
}

// Open creates or opens the database at path and brings its schema up to
// date.
func Open(ctx context.Context, path string) (*Client, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errDatabase.Fmt("open").Wrap(err)
	}

	// pragmas below are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, errDatabase.Fmt("configure").Wrap(err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, errDatabase.Fmt("migrate").Wrap(err)
	}

	return &Client{db: db}, nil
}

// Close ends the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}

	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func dbError(op string, err error) error {
	return errDatabase.Fmt(op).Wrap(err)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func querySingle[T any](
	ctx context.Context,
	db *sql.DB,
	query string,
	scan func(scanner) (*T, error),
	entity, id string,
	args ...any,
) (*T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.Fmt(entity, id)
		}

		return nil, dbError("scan "+entity, err)
	}

	return v, nil
}

func queryMultiple[T any](
	ctx context.Context,
	db *sql.DB,
	query string,
	scan func(scanner) (*T, error),
	entity string,
	args ...any,
) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("query "+entity, err)
	}
	defer rows.Close()

	var out []*T

	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, dbError("scan "+entity, err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("query "+entity, err)
	}

	return out, nil
}

// execAffecting runs a statement that must touch at least one row.
func (c *Client) execAffecting(
	ctx context.Context,
	query, entity, id string,
	args ...any,
) error {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(fmt.Sprintf("write %s", entity), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return dbError("rows affected", err)
	}

	if n == 0 {
		return ErrNotFound.Fmt(entity, id)
	}

	return nil
}
