package model

import "time"

// PendingRegistration is a submitted onboarding form awaiting staff review.
// The table is named 'pending_registrations'; one pending entry per user.
type PendingRegistration struct {
	UserID      string    `db:"user_id"` // Primary Key
	MessageID   string    `db:"message_id"`
	Name        string    `db:"name"`
	RG          string    `db:"rg"`
	Phone       string    `db:"phone"`
	Recruiter   string    `db:"recruiter"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// MemberProfile is an approved registration. Profiles are retained for a
// configured number of days and then swept.
type MemberProfile struct {
	ID           int64     `db:"id"` // Primary Key, Auto-increment
	UserID       string    `db:"user_id"`
	Name         string    `db:"name"`
	RG           string    `db:"rg"`
	RoleID       string    `db:"role_id"`
	RegisteredAt time.Time `db:"registered_at"`
}
