// Package registrations persists onboarding state: pending forms awaiting
// staff review and the approved member profiles.
package registrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the registration database and ensures the schema exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to registration database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS pending_registrations (
        user_id TEXT PRIMARY KEY,
        message_id TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL,
        rg TEXT NOT NULL,
        phone TEXT NOT NULL,
        recruiter TEXT NOT NULL DEFAULT '',
        submitted_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS members (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        rg TEXT NOT NULL,
        role_id TEXT NOT NULL,
        registered_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_members_registered_at
        ON members(registered_at);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create registrations schema: %w", err)
	}
	return db, nil
}
