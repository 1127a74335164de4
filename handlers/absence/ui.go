package absence

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"orgbot/lifecycle"
	"orgbot/utils"
)

const (
	RequestPanelTitle = "Absence Requests"
	panelColor        = 0x2b6cb0
	recordColor       = 0xd69e2e
)

// RequestPanel is the fixed message members click to open the absence form.
func RequestPanel() lifecycle.Message {
	return lifecycle.Message{
		Title: RequestPanelTitle,
		Description: "Going to be away for a while? Open an absence request so staff " +
			"know not to expect you.\n\nYou will get the absent role until your " +
			"return date, or until you click **Return from Absence** on your record.",
		Color: panelColor,
		Buttons: []lifecycle.Button{
			{CustomID: "absence:request", Label: "Request Absence", Emoji: "🏖️", Style: lifecycle.ButtonPrimary},
		},
	}
}

// RecordPanel is the per-absence message posted to the records channel. It
// carries the early-return button scoped to the requesting member.
func RecordPanel(userID, rg, reason string, entry, ret time.Time) lifecycle.Message {
	return lifecycle.Message{
		Title: "Absence Record",
		Color: recordColor,
		Fields: []lifecycle.Field{
			{Name: "Member:", Value: fmt.Sprintf("<@%s>", userID), Inline: true},
			{Name: "RG:", Value: rg, Inline: true},
			{Name: "Reason:", Value: reason},
			{Name: "Away From:", Value: lifecycle.Timestamp(entry), Inline: true},
			{Name: "Returns:", Value: lifecycle.Timestamp(ret), Inline: true},
		},
		Buttons: []lifecycle.Button{
			{CustomID: "absence:return:" + userID, Label: "Return from Absence", Emoji: "↩️", Style: lifecycle.ButtonSuccess},
		},
	}
}

// requestModal is the absence form.
func requestModal() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.TextInputRow("rg", "Your RG", "e.g. 1234", discordgo.TextInputShort, true),
		utils.TextInputRow("reason", "Reason for the absence", "Travel, exams...", discordgo.TextInputParagraph, true),
		utils.TextInputRow("entry_date", "First day away (DD/MM/YYYY)", "01/09/2026", discordgo.TextInputShort, true),
		utils.TextInputRow("return_date", "Return date (DD/MM/YYYY)", "15/09/2026", discordgo.TextInputShort, true),
	}
}
