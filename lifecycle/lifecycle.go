// Package lifecycle implements the time-bound record engine shared by
// absences, sanctions and the blacklist: create a persisted record with a
// role grant and an optional expiry, keep the platform's roles and panel
// messages in sync with it, and drive every record through the same
// terminal transition whether it expires on schedule, is returned early,
// or is removed by hand.
package lifecycle

import (
	"errors"
	"time"

	"orgbot/model"
)

var (
	// ErrNotFound is returned when a record id (or subject) has no active
	// record. A second Expire for the same record observes this and is a
	// no-op.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyActive is returned by Create when the subject already has
	// an active record of a kind that allows only one.
	ErrAlreadyActive = errors.New("subject already has an active record of this kind")

	// ErrReasonRequired is returned by Create for kinds that demand a
	// justification.
	ErrReasonRequired = errors.New("a reason is required for this record kind")

	// ErrUnknownKind is returned when no policy is configured for the
	// requested kind.
	ErrUnknownKind = errors.New("unknown record kind")

	// ErrGone marks platform failures caused by the referenced object no
	// longer existing (member left, role or message deleted). Callers
	// treat it as a benign no-op.
	ErrGone = errors.New("referenced platform object no longer exists")
)

// Store is the persistence contract for lifecycle records. All operations
// are atomic with respect to a single record.
type Store interface {
	// Create inserts the record and returns its assigned id. Kinds with a
	// single-active constraint fail with ErrAlreadyActive.
	Create(rec *model.SanctionRecord) (int64, error)
	GetByID(id int64) (*model.SanctionRecord, error)
	FindBySubject(subjectID string, kind model.RecordKind) (*model.SanctionRecord, error)
	// FindExpired returns records of the given kinds whose expiry is at or
	// before now. With no kinds it considers every kind.
	FindExpired(now time.Time, kinds ...model.RecordKind) ([]model.SanctionRecord, error)
	ListByKind(kind model.RecordKind) ([]model.SanctionRecord, error)
	SetPanelRef(id int64, channelID, messageID string) error
	SetAuditRef(id int64, channelID, messageID string) error
	// Delete removes the record, failing with ErrNotFound when it is
	// already gone.
	Delete(id int64) error
}

// Platform abstracts the chat platform's mutable state. Every operation may
// fail with ErrGone when the referenced object has disappeared; such
// failures are logged by the caller and never abort a transition.
type Platform interface {
	GrantRole(guildID, userID, roleID string) error
	RevokeRole(guildID, userID, roleID string) error
	SendPanel(channelID string, msg Message) (messageID string, err error)
	EditPanel(channelID, messageID string, msg Message) error
	// AppendPanelField adds a field to an existing panel message, recolors
	// it and strips its interactive components, preserving the rest of the
	// original content.
	AppendPanelField(channelID, messageID string, field Field, color int) error
	DeleteMessage(channelID, messageID string) error
	SendAudit(channelID, content string) (messageID string, err error)
	// FindPanel scans recent bot-authored messages in the channel for one
	// whose title contains the given text. It returns "" when none exists.
	FindPanel(channelID, title string) (messageID string, err error)
}

// Refresher re-renders a listing-style panel from the current active
// record set. Registered per kind on the Manager for categories that use
// one message for the whole listing.
type Refresher interface {
	Refresh() error
}

// Message is a platform-neutral panel or audit payload.
type Message struct {
	Title       string
	Description string
	Color       int
	Image       string
	Thumbnail   string
	Footer      string
	Fields      []Field
	Buttons     []Button
	Selects     []Select
}

// Field is one name/value pair of a panel message.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// ButtonStyle mirrors the platform's button color palette.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSuccess
	ButtonDanger
	ButtonSecondary
)

// Button is one interactive button attached to a panel.
type Button struct {
	CustomID string
	Label    string
	Emoji    string
	Style    ButtonStyle
}

// Select is one select menu attached to a panel.
type Select struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

// SelectOption is one choice of a select menu.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}
