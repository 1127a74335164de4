package model

import "time"

// Config holds everything loaded at startup. Secrets come from the
// environment, the rest from data/bot_config.yaml. Nothing is hot-reloaded.
type Config struct {
	BotToken      string
	AppID         string
	LogChannelID  string // plain-text bot activity log
	KeepAliveAddr string

	GuildID      string             `mapstructure:"guild_id"`
	Absence      AbsenceConfig      `mapstructure:"absence"`
	Sanction     SanctionConfig     `mapstructure:"sanction"`
	Blacklist    BlacklistConfig    `mapstructure:"blacklist"`
	Registration RegistrationConfig `mapstructure:"registration"`
	Ticket       TicketConfig       `mapstructure:"ticket"`
	Roster       RosterConfig       `mapstructure:"roster"`
}

// AbsenceConfig drives the leave-request workflow: a fixed request panel,
// one message per absence in the records channel, and an "absent" role.
type AbsenceConfig struct {
	PanelChannelID   string        `mapstructure:"panel_channel_id"`
	RecordsChannelID string        `mapstructure:"records_channel_id"`
	LogChannelID     string        `mapstructure:"log_channel_id"`
	RoleID           string        `mapstructure:"role_id"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

// KindPolicy binds a record kind to its role grant and fixed duration.
// Days == 0 means the record never expires automatically.
type KindPolicy struct {
	Kind   RecordKind `mapstructure:"kind"`
	Name   string     `mapstructure:"name"`
	RoleID string     `mapstructure:"role_id"`
	Days   int        `mapstructure:"days"`
}

// SanctionConfig drives the disciplinary panel and its tiers.
type SanctionConfig struct {
	PanelChannelID string        `mapstructure:"panel_channel_id"`
	LogChannelID   string        `mapstructure:"log_channel_id"`   // detailed per-record embeds
	AuditChannelID string        `mapstructure:"audit_channel_id"` // one-line lifecycle entries
	ManagerRoleID  string        `mapstructure:"manager_role_id"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	Kinds          []KindPolicy  `mapstructure:"kinds"`
}

// SanctionPolicy returns the policy for a sanction kind, or nil if the kind
// is not configured.
func (c *SanctionConfig) SanctionPolicy(kind RecordKind) *KindPolicy {
	for i := range c.Kinds {
		if c.Kinds[i].Kind == kind {
			return &c.Kinds[i]
		}
	}
	return nil
}

// BlacklistConfig drives the single listing panel.
type BlacklistConfig struct {
	ChannelID     string `mapstructure:"channel_id"`
	LogChannelID  string `mapstructure:"log_channel_id"`
	ManagerRoleID string `mapstructure:"manager_role_id"`
}

// RankedRole is one entry of the explicit hierarchy table, ordered by Rank
// ascending (lower rank = higher position).
type RankedRole struct {
	ID   string `mapstructure:"id"`
	Rank int    `mapstructure:"rank"`
	Name string `mapstructure:"name"`
}

// RegistrationConfig drives the approval-gated onboarding workflow.
type RegistrationConfig struct {
	PanelChannelID      string       `mapstructure:"panel_channel_id"`
	PendingChannelID    string       `mapstructure:"pending_channel_id"`
	LogChannelID        string       `mapstructure:"log_channel_id"`
	PendingRoleID       string       `mapstructure:"pending_role_id"`
	StaffRoleID         string       `mapstructure:"staff_role_id"`
	MemberRetentionDays int          `mapstructure:"member_retention_days"`
	Roles               []RankedRole `mapstructure:"roles"`
}

// RosterConfig drives the roster listing panel: every guild member grouped
// under their highest role from the hierarchy table. An empty channel ID
// disables the roster.
type RosterConfig struct {
	ChannelID string `mapstructure:"channel_id"`
}

// TicketConfig drives the support-ticket workflow.
type TicketConfig struct {
	PanelChannelID      string `mapstructure:"panel_channel_id"`
	CategoryID          string `mapstructure:"category_id"`
	StaffRoleID         string `mapstructure:"staff_role_id"`
	TranscriptChannelID string `mapstructure:"transcript_channel_id"`
}
