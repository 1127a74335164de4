package model

import "time"

// Ticket is one support channel opened from the ticket panel.
type Ticket struct {
	ID         string     `db:"id"` // Primary Key, UUID
	ChannelID  string     `db:"channel_id"`
	OwnerID    string     `db:"owner_id"`
	Type       string     `db:"type"`
	Reason     string     `db:"reason"`
	CreatedAt  time.Time  `db:"created_at"`
	ClosedAt   *time.Time `db:"closed_at"`
	ClosedBy   string     `db:"closed_by"`
	Transcript string     `db:"transcript"` // JSON array of TranscriptEntry
}

// TranscriptEntry is one captured message of a closed ticket.
type TranscriptEntry struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
