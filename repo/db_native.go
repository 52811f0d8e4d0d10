//go:build !cgo_sqlite

package repo

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

func openDB(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite", dsn)
}
