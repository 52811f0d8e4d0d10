package repo

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	name   TEXT PRIMARY KEY,
	source TEXT NOT NULL
);`

// SQLLoader loads templates from the table
// templates(name TEXT PRIMARY KEY, source TEXT).
type SQLLoader struct {
	db    *sql.DB
	owned bool
}

// NewSQLLoader returns a loader reading from db, creating the templates
// table if it does not exist. The caller keeps ownership of db.
func NewSQLLoader(ctx context.Context, db *sql.DB) (*SQLLoader, error) {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return nil, ErrStore.Wrap(err).With(slog.String("op", "schema"))
	}

	return &SQLLoader{db: db}, nil
}

// OpenSQLite opens the SQLite database at dsn and returns a loader that
// owns it. The driver is chosen at build time: the pure-Go driver by
// default, or the cgo driver with the cgo_sqlite build tag.
func OpenSQLite(ctx context.Context, dsn string) (*SQLLoader, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, ErrLoad.Wrap(err).With(slog.String("dsn", dsn))
	}

	l, err := NewSQLLoader(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	l.owned = true

	return l, nil
}

// Load implements [Loader].
func (l *SQLLoader) Load(ctx context.Context, name string) (string, error) {
	var src string

	err := l.db.QueryRowContext(ctx,
		"SELECT source FROM templates WHERE name = ?", name).Scan(&src)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrNotFound.With(slog.String("name", name))

	case err != nil:
		return "", ErrLoad.Wrap(err).With(slog.String("name", name))
	}

	return src, nil
}

// Names implements [Lister].
func (l *SQLLoader) Names(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT name FROM templates ORDER BY name")
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string

		err = rows.Scan(&name)
		if err != nil {
			return nil, ErrLoad.Wrap(err)
		}

		names = append(names, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	return names, nil
}

// Store inserts or replaces a template.
func (l *SQLLoader) Store(ctx context.Context, name, source string) error {
	if name == "" {
		return ErrInvalidName.With(slog.String("name", name))
	}

	_, err := l.db.ExecContext(ctx, `
INSERT INTO templates (name, source) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET source = excluded.source`, name, source)
	if err != nil {
		return ErrStore.Wrap(err).With(slog.String("name", name))
	}

	return nil
}

// Delete removes a template. Deleting a missing name is not an error.
func (l *SQLLoader) Delete(ctx context.Context, name string) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM templates WHERE name = ?", name)
	if err != nil {
		return ErrStore.Wrap(err).With(slog.String("name", name))
	}

	return nil
}

// Close closes the database if it was opened by [OpenSQLite].
func (l *SQLLoader) Close() error {
	if !l.owned {
		return nil
	}

	return l.db.Close()
}
