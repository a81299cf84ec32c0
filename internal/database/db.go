package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSessionDB opens the local sqlite file the CLI keeps its login session
// in. The table holds at most one row.
func OpenSessionDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	createSessionSQL := `CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		user_id TEXT,
		email TEXT,
		name TEXT,
		authenticated BOOLEAN DEFAULT 0,
		last_activity DATETIME,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(createSessionSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table sessions: %w", err)
	}
	return db, nil
}
