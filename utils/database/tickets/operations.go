package tickets

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"orgbot/model"
)

// ErrNotFound means no ticket matched the lookup.
var ErrNotFound = errors.New("ticket not found")

// Store persists tickets.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(t *model.Ticket) error {
	query := `INSERT INTO tickets
        (id, channel_id, owner_id, type, reason, created_at, closed_at, closed_by, transcript)
        VALUES (:id, :channel_id, :owner_id, :type, :reason, :created_at, :closed_at, :closed_by, :transcript)`
	if _, err := s.db.NamedExec(query, t); err != nil {
		return fmt.Errorf("failed to insert ticket %s: %w", t.ID, err)
	}
	return nil
}

// GetOpenByChannel returns the open ticket living in the given channel.
func (s *Store) GetOpenByChannel(channelID string) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.Get(&t, "SELECT * FROM tickets WHERE channel_id = ? AND closed_at IS NULL", channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket for channel %s: %w", channelID, err)
	}
	return &t, nil
}

// HasOpenTicket reports whether the owner already has an unclosed ticket.
func (s *Store) HasOpenTicket(ownerID string) (bool, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM tickets WHERE owner_id = ? AND closed_at IS NULL", ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to count open tickets for user %s: %w", ownerID, err)
	}
	return count > 0, nil
}

// Close marks the ticket closed and attaches its transcript.
func (s *Store) Close(id, closedBy, transcript string, closedAt time.Time) error {
	result, err := s.db.Exec(
		"UPDATE tickets SET closed_at = ?, closed_by = ?, transcript = ? WHERE id = ? AND closed_at IS NULL",
		closedAt, closedBy, transcript, id)
	if err != nil {
		return fmt.Errorf("failed to close ticket %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for ticket %s: %w", id, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
