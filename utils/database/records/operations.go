package records

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"orgbot/lifecycle"
	"orgbot/model"
)

// Store implements lifecycle.Store on a SQLite database.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(rec *model.SanctionRecord) (int64, error) {
	query := `INSERT INTO records
        (subject_id, subject_label, kind, role_id, reason, issuer_id, guild_id,
         created_at, expires_at, panel_channel_id, panel_message_id, audit_channel_id, audit_message_id)
        VALUES
        (:subject_id, :subject_label, :kind, :role_id, :reason, :issuer_id, :guild_id,
         :created_at, :expires_at, :panel_channel_id, :panel_message_id, :audit_channel_id, :audit_message_id)`

	result, err := s.db.NamedExec(query, rec)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return 0, lifecycle.ErrAlreadyActive
		}
		return 0, fmt.Errorf("failed to insert %s record for subject %s: %w", rec.Kind, rec.SubjectID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted record id: %w", err)
	}
	return id, nil
}

func (s *Store) GetByID(id int64) (*model.SanctionRecord, error) {
	var rec model.SanctionRecord
	err := s.db.Get(&rec, "SELECT * FROM records WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) FindBySubject(subjectID string, kind model.RecordKind) (*model.SanctionRecord, error) {
	var rec model.SanctionRecord
	err := s.db.Get(&rec, "SELECT * FROM records WHERE subject_id = ? AND kind = ?", subjectID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s record for subject %s: %w", kind, subjectID, err)
	}
	return &rec, nil
}

func (s *Store) FindExpired(now time.Time, kinds ...model.RecordKind) ([]model.SanctionRecord, error) {
	var recs []model.SanctionRecord
	if len(kinds) == 0 {
		err := s.db.Select(&recs, "SELECT * FROM records WHERE expires_at IS NOT NULL AND expires_at <= ?", now)
		if err != nil {
			return nil, fmt.Errorf("failed to find expired records: %w", err)
		}
		return recs, nil
	}

	query, args, err := sqlx.In(
		"SELECT * FROM records WHERE expires_at IS NOT NULL AND expires_at <= ? AND kind IN (?)", now, kinds)
	if err != nil {
		return nil, fmt.Errorf("failed to build expired-record query: %w", err)
	}
	if err := s.db.Select(&recs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find expired records: %w", err)
	}
	return recs, nil
}

func (s *Store) ListByKind(kind model.RecordKind) ([]model.SanctionRecord, error) {
	var recs []model.SanctionRecord
	err := s.db.Select(&recs, "SELECT * FROM records WHERE kind = ? ORDER BY created_at", kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", kind, err)
	}
	return recs, nil
}

// ListSanctions returns every active disciplinary record across all tiers,
// oldest first.
func (s *Store) ListSanctions() ([]model.SanctionRecord, error) {
	query, args, err := sqlx.In("SELECT * FROM records WHERE kind IN (?) ORDER BY created_at", model.SanctionKinds())
	if err != nil {
		return nil, fmt.Errorf("failed to build sanction listing query: %w", err)
	}
	var recs []model.SanctionRecord
	if err := s.db.Select(&recs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list sanction records: %w", err)
	}
	return recs, nil
}

func (s *Store) SetPanelRef(id int64, channelID, messageID string) error {
	return s.setRef(id, "panel_channel_id", "panel_message_id", channelID, messageID)
}

func (s *Store) SetAuditRef(id int64, channelID, messageID string) error {
	return s.setRef(id, "audit_channel_id", "audit_message_id", channelID, messageID)
}

func (s *Store) setRef(id int64, channelCol, messageCol, channelID, messageID string) error {
	query := fmt.Sprintf("UPDATE records SET %s = ?, %s = ? WHERE id = ?", channelCol, messageCol)
	result, err := s.db.Exec(query, channelID, messageID, id)
	if err != nil {
		return fmt.Errorf("failed to update message refs for record %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for record %d: %w", id, err)
	}
	if rows == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(id int64) error {
	result, err := s.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for record %d: %w", id, err)
	}
	if rows == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

// DeleteBySubject removes the subject's records of a kind regardless of
// lifecycle state. Used by administrative cleanup, not by transitions.
func (s *Store) DeleteBySubject(subjectID string, kind model.RecordKind) error {
	_, err := s.db.Exec("DELETE FROM records WHERE subject_id = ? AND kind = ?", subjectID, kind)
	if err != nil {
		return fmt.Errorf("failed to delete %s records for subject %s: %w", kind, subjectID, err)
	}
	return nil
}
