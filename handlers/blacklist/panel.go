package blacklist

import (
	"fmt"

	"orgbot/lifecycle"
	"orgbot/model"
)

const (
	PanelTitle = "Organization Blacklist"
	panelColor = 0x1a202c
)

// Render builds the full listing from the active entries. The whole panel is
// re-rendered on every change; there is no per-entry message to diff.
func Render(records []model.SanctionRecord) lifecycle.Message {
	msg := lifecycle.Message{
		Title: PanelTitle,
		Color: panelColor,
		Buttons: []lifecycle.Button{
			{CustomID: "blacklist:add", Label: "Add", Emoji: "➕", Style: lifecycle.ButtonDanger},
			{CustomID: "blacklist:remove", Label: "Remove", Emoji: "➖", Style: lifecycle.ButtonSecondary},
		},
	}
	if len(records) == 0 {
		msg.Description = "Nobody is blacklisted right now."
		return msg
	}
	msg.Description = fmt.Sprintf("**%d** member(s) are barred from the organization.", len(records))
	for _, rec := range records {
		value := fmt.Sprintf("ID: `%s` | Added by <@%s> on %s",
			rec.SubjectID, rec.IssuerID, lifecycle.Timestamp(rec.CreatedAt))
		if rec.Reason != "" {
			value += fmt.Sprintf("\nReason: %s", rec.Reason)
		}
		msg.Fields = append(msg.Fields, lifecycle.Field{
			Name:  rec.SubjectLabel,
			Value: value,
		})
	}
	return msg
}
