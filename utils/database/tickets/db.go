// Package tickets persists support tickets and their transcripts.
package tickets

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the ticket database and ensures the schema exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ticket database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS tickets (
        id TEXT PRIMARY KEY,
        channel_id TEXT NOT NULL,
        owner_id TEXT NOT NULL,
        type TEXT NOT NULL,
        reason TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL,
        closed_at DATETIME,
        closed_by TEXT NOT NULL DEFAULT '',
        transcript TEXT NOT NULL DEFAULT ''
    );
    CREATE INDEX IF NOT EXISTS idx_tickets_owner ON tickets(owner_id);
    CREATE INDEX IF NOT EXISTS idx_tickets_channel ON tickets(channel_id);`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create tickets schema: %w", err)
	}
	return db, nil
}
