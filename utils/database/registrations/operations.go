package registrations

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"orgbot/model"
)

var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("registration not found")
	// ErrAlreadyPending means the user already has a form awaiting review.
	ErrAlreadyPending = errors.New("registration already pending")
)

// Store persists pending registrations and member profiles.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// InsertPending records a submitted form. The primary key on user_id makes
// double submission atomic: the second insert fails with ErrAlreadyPending.
func (s *Store) InsertPending(p *model.PendingRegistration) error {
	query := `INSERT INTO pending_registrations
        (user_id, message_id, name, rg, phone, recruiter, submitted_at)
        VALUES (:user_id, :message_id, :name, :rg, :phone, :recruiter, :submitted_at)`
	_, err := s.db.NamedExec(query, p)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrAlreadyPending
		}
		return fmt.Errorf("failed to insert pending registration for user %s: %w", p.UserID, err)
	}
	return nil
}

func (s *Store) GetPendingByUser(userID string) (*model.PendingRegistration, error) {
	var p model.PendingRegistration
	err := s.db.Get(&p, "SELECT * FROM pending_registrations WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending registration for user %s: %w", userID, err)
	}
	return &p, nil
}

// SetPendingMessage links the form to its review embed in the pending channel.
func (s *Store) SetPendingMessage(userID, messageID string) error {
	result, err := s.db.Exec("UPDATE pending_registrations SET message_id = ? WHERE user_id = ?", messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to update pending registration for user %s: %w", userID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for user %s: %w", userID, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeletePending(userID string) error {
	result, err := s.db.Exec("DELETE FROM pending_registrations WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete pending registration for user %s: %w", userID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for user %s: %w", userID, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertMember(m *model.MemberProfile) (int64, error) {
	query := `INSERT INTO members (user_id, name, rg, role_id, registered_at)
        VALUES (:user_id, :name, :rg, :role_id, :registered_at)`
	result, err := s.db.NamedExec(query, m)
	if err != nil {
		return 0, fmt.Errorf("failed to insert member profile for user %s: %w", m.UserID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted member id: %w", err)
	}
	return id, nil
}

func (s *Store) GetMemberByUser(userID string) (*model.MemberProfile, error) {
	var m model.MemberProfile
	err := s.db.Get(&m, "SELECT * FROM members WHERE user_id = ? ORDER BY registered_at DESC LIMIT 1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member profile for user %s: %w", userID, err)
	}
	return &m, nil
}

// DeleteMembersBefore removes profiles registered before the cutoff and
// returns how many were removed.
func (s *Store) DeleteMembersBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM members WHERE registered_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old member profiles: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected for member cleanup: %w", err)
	}
	return rows, nil
}
