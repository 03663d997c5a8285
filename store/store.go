package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the mission history database. Mission rows, status transitions
// and hazard transitions all land here; live fleet state never does.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the history database at path and applies the
// schema. WAL keeps the engine's event handlers from stalling API reads,
// and the single connection serializes writers the way SQLite wants.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{sqlDB}
	if _, err := db.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
