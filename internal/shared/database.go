package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens the sqlite file backing the playlist cache, or a
// throwaway database when path is ":memory:". Foreign key enforcement is
// requested through the DSN so every pooled connection gets it; tracks
// reference their playlist row and sqlite leaves the constraint off by
// default. The connection is pinged before it is returned.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database at %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache database at %s is not usable: %w", path, err)
	}

	return db, nil
}

// ConfigureDatabase caps the connection pool. The cache sees short bursts of
// writes during sync and bulk export, so a small pool suffices.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
