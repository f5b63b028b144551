// Package sqlite provides the SQLite-backed todo table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todo/internal/model"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SchemaVersion is the version stamped into PRAGMA user_version.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS todo (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	finished BOOLEAN NOT NULL CHECK (finished IN (0,1))
)`

var (
	// ErrUpgradeNotImplemented is returned by Open when the file carries a
	// schema version other than SchemaVersion.
	ErrUpgradeNotImplemented = errors.New("schema upgrade not implemented")
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("todo not found")
)

// Store wraps the todo table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and makes sure the todo
// table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer, and ":memory:" only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	switch version {
	case 0:
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("stamping schema version: %w", err)
		}
		return nil
	case SchemaVersion:
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: database is at version %d, want %d", ErrUpgradeNotImplemented, version, SchemaVersion)
	}
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Add inserts a new row, replacing on conflict, and returns its id.
func (s *Store) Add(ctx context.Context, title string, finished bool) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO todo (title, finished) VALUES (?, ?)", title, finished)
	if err != nil {
		return 0, fmt.Errorf("add %q: %w", title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add %q: last insert id: %w", title, err)
	}
	return id, nil
}

// Put writes item under its own id. An existing row with that id is
// overwritten. Items without an id are added.
func (s *Store) Put(ctx context.Context, item model.Item) (int64, error) {
	if item.ID == 0 {
		return s.Add(ctx, item.Title, item.Finished)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO todo (id, title, finished) VALUES (?, ?, ?)",
		item.ID, item.Title, item.Finished); err != nil {
		return 0, fmt.Errorf("put %d: %w", item.ID, err)
	}
	return item.ID, nil
}

// All returns every row ordered by id.
func (s *Store) All(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, finished FROM todo ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Finished); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	return items, nil
}

// Get returns the row with the given id.
func (s *Store) Get(ctx context.Context, id int64) (model.Item, error) {
	var it model.Item
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, finished FROM todo WHERE id = ?", id).Scan(&it.ID, &it.Title, &it.Finished)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("get %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("get %d: %w", id, err)
	}
	return it, nil
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM todo").Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Update writes the finished flag of item. The title is never touched.
func (s *Store) Update(ctx context.Context, item model.Item) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE todo SET finished = ? WHERE id = ?", item.Finished, item.ID)
	if err != nil {
		return fmt.Errorf("update %d: %w", item.ID, err)
	}
	return expectOne(res, "update", item.ID)
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todo WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return expectOne(res, "delete", id)
}

func expectOne(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
