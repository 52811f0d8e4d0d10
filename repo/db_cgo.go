//go:build cgo_sqlite

package repo

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func openDB(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite3", dsn)
}
