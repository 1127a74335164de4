package model

import "time"

// RecordKind is the category of a lifecycle record. Each kind has its own
// policy (role, duration, channels) but every kind moves through the same
// Active -> Expired machine.
type RecordKind string

const (
	KindAbsence          RecordKind = "absence"
	KindSanctionMinor    RecordKind = "sanction_minor"
	KindSanctionModerate RecordKind = "sanction_moderate"
	KindSanctionSevere   RecordKind = "sanction_severe"
	KindSanctionTerminal RecordKind = "sanction_terminal"
	KindBlacklist        RecordKind = "blacklist"
)

// IsSanction reports whether the kind is one of the disciplinary tiers.
func (k RecordKind) IsSanction() bool {
	switch k {
	case KindSanctionMinor, KindSanctionModerate, KindSanctionSevere, KindSanctionTerminal:
		return true
	}
	return false
}

// SanctionKinds returns the disciplinary tiers in ascending severity.
func SanctionKinds() []RecordKind {
	return []RecordKind{KindSanctionMinor, KindSanctionModerate, KindSanctionSevere, KindSanctionTerminal}
}

// ExpiryTrigger records what drove a record to its terminal state.
type ExpiryTrigger string

const (
	// TriggerTimeout: the sweeper found the record past its expiry.
	TriggerTimeout ExpiryTrigger = "timeout"
	// TriggerEarlyReturn: the subject ended their own absence.
	TriggerEarlyReturn ExpiryTrigger = "early_return"
	// TriggerManual: staff removed the record by hand.
	TriggerManual ExpiryTrigger = "manual"
)

// SanctionRecord is one active lifecycle record. Records exist only while
// active: the terminal transition deletes the row, and the panel and audit
// messages remain as the historical trace.
type SanctionRecord struct {
	ID           int64      `db:"id"` // Primary Key, Auto-increment
	SubjectID    string     `db:"subject_id"`
	SubjectLabel string     `db:"subject_label"`
	Kind         RecordKind `db:"kind"`
	RoleID       string     `db:"role_id"`
	Reason       string     `db:"reason"`
	IssuerID     string     `db:"issuer_id"`
	GuildID      string     `db:"guild_id"`
	CreatedAt    time.Time  `db:"created_at"`
	ExpiresAt    *time.Time `db:"expires_at"` // nil: never expires automatically

	PanelChannelID string `db:"panel_channel_id"`
	PanelMessageID string `db:"panel_message_id"`
	AuditChannelID string `db:"audit_channel_id"`
	AuditMessageID string `db:"audit_message_id"`
}

// Expired reports whether the record's expiry has passed at the given
// instant. Records without an expiry never expire.
func (r *SanctionRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}
