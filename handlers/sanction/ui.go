package sanction

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/utils"
)

const (
	MainPanelTitle = "Sanction Management"
	panelColor     = 0x9b2c2c
	appliedColor   = 0xff0000
)

// MainPanel is the staff-facing control panel.
func MainPanel() lifecycle.Message {
	return lifecycle.Message{
		Title: MainPanelTitle,
		Description: "Apply or remove disciplinary sanctions. Applying a new " +
			"sanction replaces any sanction the member already carries.",
		Color: panelColor,
		Buttons: []lifecycle.Button{
			{CustomID: "sanction:apply", Label: "Apply Sanction", Emoji: "⚖️", Style: lifecycle.ButtonDanger},
			{CustomID: "sanction:remove", Label: "Remove Sanction", Emoji: "🧹", Style: lifecycle.ButtonSecondary},
			{CustomID: "sanction:remove_id", Label: "Remove by ID", Style: lifecycle.ButtonSecondary},
		},
	}
}

// tierSelect lists the configured tiers for the issuer to pick from.
func tierSelect(kinds []model.KindPolicy) lifecycle.Select {
	sel := lifecycle.Select{
		CustomID:    "sanction:tier",
		Placeholder: "Choose the sanction tier",
	}
	for _, kp := range kinds {
		duration := "Permanent"
		if kp.Days > 0 {
			duration = fmt.Sprintf("%d days", kp.Days)
		}
		sel.Options = append(sel.Options, lifecycle.SelectOption{
			Label:       kp.Name,
			Value:       string(kp.Kind),
			Description: duration,
		})
	}
	return sel
}

// AppliedPanel is the detailed record embed posted when a sanction lands.
func AppliedPanel(userID, userLabel, reason string, policy model.KindPolicy, expiresAt *time.Time) lifecycle.Message {
	expiry := "Permanent"
	if expiresAt != nil {
		expiry = lifecycle.Timestamp(*expiresAt)
	}
	return lifecycle.Message{
		Title: "Sanction Applied",
		Color: appliedColor,
		Fields: []lifecycle.Field{
			{Name: "Sanctioned Member:", Value: fmt.Sprintf("<@%s>", userID), Inline: true},
			{Name: "Member Name:", Value: userLabel, Inline: true},
			{Name: "Reason:", Value: reason},
			{Name: "Sanction:", Value: policy.Name, Inline: true},
			{Name: "Expires:", Value: expiry, Inline: true},
		},
	}
}

// removeSelect lists the active non-terminal sanctions for removal. Terminal
// sanctions are permanent and can only be lifted by ID.
func removeSelect(records []model.SanctionRecord) lifecycle.Select {
	sel := lifecycle.Select{
		CustomID:    "sanction:remove_select",
		Placeholder: "Choose the sanction to remove",
	}
	for _, rec := range records {
		// Discord rejects the whole response when a label or description
		// exceeds 100 characters.
		sel.Options = append(sel.Options, lifecycle.SelectOption{
			Label:       utils.Truncate(fmt.Sprintf("%s (ID %d)", rec.SubjectLabel, rec.ID), 100),
			Value:       fmt.Sprintf("%d", rec.ID),
			Description: utils.Truncate(rec.Reason, 100),
		})
	}
	return sel
}

// policyExpiry is the expiry the policy will assign, for display only; the
// stored expiry is computed by the manager.
func policyExpiry(policy model.KindPolicy) *time.Time {
	if policy.Days <= 0 {
		return nil
	}
	t := time.Now().Add(time.Duration(policy.Days) * 24 * time.Hour)
	return &t
}

// applyModal collects the target and justification for one tier.
func applyModal() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.TextInputRow("member", "Member (ID or @mention)", "123456789012345678", discordgo.TextInputShort, true),
		utils.TextInputRow("reason", "Reason for the sanction", "", discordgo.TextInputParagraph, true),
	}
}

// removeByIDModal collects a record ID for manual removal.
func removeByIDModal() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.TextInputRow("record_id", "Record ID", "Shown in the sanction embed footer", discordgo.TextInputShort, true),
	}
}
