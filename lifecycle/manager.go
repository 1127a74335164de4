package lifecycle

import (
	"errors"
	"fmt"
	"log"
	"time"

	"orgbot/model"
)

// Policy fixes the role grant, duration and destination channels for one
// record kind. Policies come from configuration, loaded once at startup.
type Policy struct {
	Name           string
	RoleID         string
	Days           int // 0: no automatic expiry
	PanelChannelID string
	AuditChannelID string
}

// Manager owns the Active -> Expired state machine for every record kind.
// Interactive handlers and the sweeper both go through it, so both paths
// converge on the same end state.
type Manager struct {
	store      Store
	platform   Platform
	guildID    string
	policies   map[model.RecordKind]Policy
	refreshers map[model.RecordKind]Refresher
	now        func() time.Time
}

func NewManager(store Store, platform Platform, guildID string, policies map[model.RecordKind]Policy) *Manager {
	return &Manager{
		store:      store,
		platform:   platform,
		guildID:    guildID,
		policies:   policies,
		refreshers: make(map[model.RecordKind]Refresher),
		now:        time.Now,
	}
}

// SetRefresher registers the listing panel to re-render after every create
// or expire of the given kind.
func (m *Manager) SetRefresher(kind model.RecordKind, r Refresher) {
	m.refreshers[kind] = r
}

// CreateRequest carries the validated user input for a Create transition.
type CreateRequest struct {
	Kind         model.RecordKind
	SubjectID    string
	SubjectLabel string
	Reason       string
	IssuerID     string
	// ExpiresAt overrides the policy duration (absences carry an explicit
	// return date). Nil with a non-zero policy duration means "now + days".
	ExpiresAt *time.Time
	// Panel is the rendered per-record panel content. Nil for kinds that
	// use a listing panel instead.
	Panel *Message
}

// Create validates the request, persists the record, grants the role and
// publishes the panel and audit messages. The store write comes first: a
// failed write mutates nothing external. Later steps are individually
// fallible and logged without aborting the rest.
func (m *Manager) Create(req CreateRequest) (*model.SanctionRecord, error) {
	policy, ok := m.policies[req.Kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	if req.Reason == "" && req.Kind != model.KindBlacklist {
		return nil, ErrReasonRequired
	}

	now := m.now()
	rec := &model.SanctionRecord{
		SubjectID:      req.SubjectID,
		SubjectLabel:   req.SubjectLabel,
		Kind:           req.Kind,
		RoleID:         policy.RoleID,
		Reason:         req.Reason,
		IssuerID:       req.IssuerID,
		GuildID:        m.guildID,
		CreatedAt:      now,
		ExpiresAt:      req.ExpiresAt,
		AuditChannelID: policy.AuditChannelID,
	}
	if rec.ExpiresAt == nil && policy.Days > 0 {
		t := now.Add(time.Duration(policy.Days) * 24 * time.Hour)
		rec.ExpiresAt = &t
	}

	id, err := m.store.Create(rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	if policy.RoleID != "" {
		if err := m.platform.GrantRole(m.guildID, rec.SubjectID, policy.RoleID); err != nil {
			m.logStep(rec, "grant role", err)
		}
	}

	if req.Panel != nil {
		msg := *req.Panel
		// The id is only known after the insert, so the footer is stamped
		// here rather than by the renderer.
		if msg.Footer == "" {
			msg.Footer = fmt.Sprintf("Record ID: %d", rec.ID)
		}
		messageID, err := m.platform.SendPanel(policy.PanelChannelID, msg)
		if err != nil {
			m.logStep(rec, "send panel", err)
		} else {
			rec.PanelChannelID = policy.PanelChannelID
			rec.PanelMessageID = messageID
			if err := m.store.SetPanelRef(rec.ID, policy.PanelChannelID, messageID); err != nil {
				m.logStep(rec, "save panel ref", err)
			}
		}
	}

	if r, ok := m.refreshers[req.Kind]; ok {
		if err := r.Refresh(); err != nil {
			m.logStep(rec, "refresh listing", err)
		}
	}

	m.audit(rec, createdAuditLine(rec))
	return rec, nil
}

// Expire drives the record with the given id to its terminal state.
func (m *Manager) Expire(id int64, trigger model.ExpiryTrigger) error {
	rec, err := m.store.GetByID(id)
	if err != nil {
		return err
	}
	return m.ExpireRecord(*rec, trigger)
}

// ExpireBySubject expires the subject's active record of the given kind.
func (m *Manager) ExpireBySubject(subjectID string, kind model.RecordKind, trigger model.ExpiryTrigger) error {
	rec, err := m.store.FindBySubject(subjectID, kind)
	if err != nil {
		return err
	}
	return m.ExpireRecord(*rec, trigger)
}

// ExpireRecord performs the terminal transition: claim the record by
// deleting it from the store, then revoke the role, finalize the panel and
// emit the audit entry. The delete doubles as the claim, so a concurrent
// expiry of the same record observes ErrNotFound and performs no external
// work. External failures after the claim are logged and never fatal.
func (m *Manager) ExpireRecord(rec model.SanctionRecord, trigger model.ExpiryTrigger) error {
	if err := m.store.Delete(rec.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete record %d: %w", rec.ID, err)
	}

	if rec.RoleID != "" {
		if err := m.platform.RevokeRole(rec.GuildID, rec.SubjectID, rec.RoleID); err != nil {
			m.logStep(&rec, "revoke role", err)
		}
	}

	m.finalizePanel(&rec, trigger)

	if r, ok := m.refreshers[rec.Kind]; ok {
		if err := r.Refresh(); err != nil {
			m.logStep(&rec, "refresh listing", err)
		}
	}

	m.audit(&rec, expiredAuditLine(&rec, trigger))
	return nil
}

// ListActive returns the active records of a kind. Read-only.
func (m *Manager) ListActive(kind model.RecordKind) ([]model.SanctionRecord, error) {
	return m.store.ListByKind(kind)
}

// finalizePanel updates the record's panel message to reflect the terminal
// state. Absences keep their original content and gain a banner field;
// sanctions get a full terminal re-render; listing kinds have no per-record
// panel.
func (m *Manager) finalizePanel(rec *model.SanctionRecord, trigger model.ExpiryTrigger) {
	if rec.PanelMessageID == "" {
		return
	}
	var err error
	switch {
	case rec.Kind == model.KindAbsence:
		field, color := absenceClosingBanner(trigger, m.now())
		err = m.platform.AppendPanelField(rec.PanelChannelID, rec.PanelMessageID, field, color)
	case rec.Kind.IsSanction():
		err = m.platform.EditPanel(rec.PanelChannelID, rec.PanelMessageID, RenderSanctionClosed(rec, trigger, m.now()))
	}
	if err != nil {
		m.logStep(rec, "finalize panel", err)
	}
}

// audit sends the lifecycle entry and backfills its message reference while
// the record still exists in the store.
func (m *Manager) audit(rec *model.SanctionRecord, content string) {
	if rec.AuditChannelID == "" {
		return
	}
	messageID, err := m.platform.SendAudit(rec.AuditChannelID, content)
	if err != nil {
		m.logStep(rec, "send audit entry", err)
		return
	}
	rec.AuditMessageID = messageID
	if err := m.store.SetAuditRef(rec.ID, rec.AuditChannelID, messageID); err != nil && !errors.Is(err, ErrNotFound) {
		m.logStep(rec, "save audit ref", err)
	}
}

func (m *Manager) logStep(rec *model.SanctionRecord, step string, err error) {
	if errors.Is(err, ErrGone) {
		log.Printf("record %d (%s, subject %s): %s skipped: %v", rec.ID, rec.Kind, rec.SubjectID, step, err)
		return
	}
	log.Printf("record %d (%s, subject %s): %s failed: %v", rec.ID, rec.Kind, rec.SubjectID, step, err)
}
