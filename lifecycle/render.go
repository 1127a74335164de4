package lifecycle

import (
	"fmt"
	"time"

	"orgbot/model"
)

// Terminal panel colors, matching the community's established palette.
const (
	colorExpired     = 0x4287f5
	colorEarlyReturn = 0x008000
	colorRemoved     = 0x00ff00
)

// MessageLink builds a jump link to a message.
func MessageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// Timestamp renders t as the platform's localized timestamp markup.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

// RelativeTimestamp renders t as the platform's relative-time markup.
func RelativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func createdAuditLine(rec *model.SanctionRecord) string {
	link := ""
	if rec.PanelMessageID != "" {
		link = " Link: " + MessageLink(rec.GuildID, rec.PanelChannelID, rec.PanelMessageID)
	}
	switch {
	case rec.Kind == model.KindAbsence:
		return fmt.Sprintf("| Member <@%s> entered absence.%s", rec.SubjectID, link)
	case rec.Kind.IsSanction():
		return fmt.Sprintf("| A sanction was applied to <@%s> by <@%s>.%s", rec.SubjectID, rec.IssuerID, link)
	case rec.Kind == model.KindBlacklist:
		reason := "No reason was provided."
		if rec.Reason != "" {
			reason = fmt.Sprintf("Reason: `%s`", rec.Reason)
		}
		return fmt.Sprintf("| Member `%s - ID: %s` was added to the blacklist by <@%s>. %s",
			rec.SubjectLabel, rec.SubjectID, rec.IssuerID, reason)
	}
	return fmt.Sprintf("| Record created for <@%s>.", rec.SubjectID)
}

func expiredAuditLine(rec *model.SanctionRecord, trigger model.ExpiryTrigger) string {
	link := ""
	if rec.PanelMessageID != "" {
		link = " Link: " + MessageLink(rec.GuildID, rec.PanelChannelID, rec.PanelMessageID)
	}
	switch {
	case rec.Kind == model.KindAbsence:
		switch trigger {
		case model.TriggerEarlyReturn:
			return fmt.Sprintf("| Member <@%s> left absence by clicking Return from Absence.%s", rec.SubjectID, link)
		case model.TriggerManual:
			return fmt.Sprintf("| The absence of <@%s> was removed by staff.%s", rec.SubjectID, link)
		default:
			return fmt.Sprintf("| Member <@%s> left absence on reaching the return date.%s", rec.SubjectID, link)
		}
	case rec.Kind.IsSanction():
		if trigger == model.TriggerTimeout {
			return fmt.Sprintf("| The sanction on <@%s> was removed after its duration elapsed.%s", rec.SubjectID, link)
		}
		return fmt.Sprintf("| The sanction on <@%s> was removed manually.%s", rec.SubjectID, link)
	case rec.Kind == model.KindBlacklist:
		return fmt.Sprintf("| Member `%s - ID: %s` was removed from the blacklist.", rec.SubjectLabel, rec.SubjectID)
	}
	return fmt.Sprintf("| Record for <@%s> expired (%s).", rec.SubjectID, trigger)
}

// absenceClosingBanner is appended to an absence panel when it closes; the
// rest of the original embed is preserved.
func absenceClosingBanner(trigger model.ExpiryTrigger, now time.Time) (Field, int) {
	switch trigger {
	case model.TriggerEarlyReturn:
		return Field{Name: "Early Return:", Value: Timestamp(now)}, colorEarlyReturn
	case model.TriggerManual:
		return Field{Name: "Absence Removed:", Value: Timestamp(now)}, colorRemoved
	default:
		return Field{Name: "Absence Expired:", Value: Timestamp(now)}, colorExpired
	}
}

// RenderSanctionClosed re-renders a sanction's panel message in its
// terminal state.
func RenderSanctionClosed(rec *model.SanctionRecord, trigger model.ExpiryTrigger, now time.Time) Message {
	title := "Sanction Removed"
	description := fmt.Sprintf("The sanction on **<@%s>** was removed manually.", rec.SubjectID)
	if trigger == model.TriggerTimeout {
		title = "Sanction Expired Automatically"
		description = fmt.Sprintf("The sanction on **<@%s>** expired and was removed automatically.", rec.SubjectID)
	}

	expiry := "Permanent"
	if rec.ExpiresAt != nil {
		expiry = Timestamp(*rec.ExpiresAt)
	}

	return Message{
		Title:       title,
		Description: description,
		Color:       colorRemoved,
		Fields: []Field{
			{Name: "Sanctioned Member:", Value: fmt.Sprintf("<@%s>", rec.SubjectID), Inline: true},
			{Name: "Member Name:", Value: rec.SubjectLabel, Inline: true},
			{Name: "Reason:", Value: rec.Reason},
			{Name: "Sanction:", Value: fmt.Sprintf("<@&%s>", rec.RoleID), Inline: true},
			{Name: "Original Expiry:", Value: expiry, Inline: true},
			{Name: "Closed:", Value: Timestamp(now), Inline: true},
		},
		Footer: fmt.Sprintf("Record ID: %d", rec.ID),
	}
}
