package registration

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/utils"
)

const (
	PanelTitle   = "Member Registration"
	panelColor   = 0x2f855a
	pendingColor = 0xd69e2e
	deniedColor  = 0x9b2c2c
)

// Panel is the fixed message newcomers click to open the registration form.
func Panel() lifecycle.Message {
	return lifecycle.Message{
		Title: PanelTitle,
		Description: "Welcome! Fill in the registration form and a staff member " +
			"will review it. Once approved you receive your rank and your " +
			"nickname is set to the community standard.",
		Color: panelColor,
		Buttons: []lifecycle.Button{
			{CustomID: "registration:open", Label: "Register", Emoji: "📝", Style: lifecycle.ButtonSuccess},
		},
	}
}

// formModal is the registration form.
func formModal() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.TextInputRow("name", "Name and surname", "John Doe", discordgo.TextInputShort, true),
		utils.TextInputRow("rg", "RG", "e.g. 1234", discordgo.TextInputShort, true),
		utils.TextInputRow("phone", "Phone", "(000) 000-000", discordgo.TextInputShort, true),
		utils.TextInputRow("recruiter", "Who recruited you? (optional)", "", discordgo.TextInputShort, false),
	}
}

// PendingReview is the staff-facing embed for one submitted form. The role
// select doubles as the approve action; picking a rank approves the member
// with it.
func PendingReview(p *model.PendingRegistration, roles []model.RankedRole) lifecycle.Message {
	sel := lifecycle.Select{
		CustomID:    "registration:role:" + p.UserID,
		Placeholder: "Approve with rank...",
	}
	for _, r := range roles {
		sel.Options = append(sel.Options, lifecycle.SelectOption{
			Label:       r.Name,
			Value:       r.ID,
			Description: fmt.Sprintf("Rank %d", r.Rank),
		})
	}
	return lifecycle.Message{
		Title: "Registration Pending",
		Color: pendingColor,
		Fields: []lifecycle.Field{
			{Name: "Applicant:", Value: fmt.Sprintf("<@%s>", p.UserID), Inline: true},
			{Name: "Name:", Value: p.Name, Inline: true},
			{Name: "RG:", Value: p.RG, Inline: true},
			{Name: "Phone:", Value: p.Phone, Inline: true},
			{Name: "Recruiter:", Value: orDash(p.Recruiter), Inline: true},
			{Name: "Submitted:", Value: lifecycle.Timestamp(p.SubmittedAt), Inline: true},
		},
		Selects: []lifecycle.Select{sel},
		Buttons: []lifecycle.Button{
			{CustomID: "registration:deny:" + p.UserID, Label: "Deny", Emoji: "🚫", Style: lifecycle.ButtonDanger},
		},
	}
}

// ReviewClosed replaces the pending embed once the form is decided.
func ReviewClosed(p *model.PendingRegistration, approved bool, reviewerID, detail string) lifecycle.Message {
	title, color := "Registration Approved", panelColor
	if !approved {
		title, color = "Registration Denied", deniedColor
	}
	msg := lifecycle.Message{
		Title: title,
		Color: color,
		Fields: []lifecycle.Field{
			{Name: "Applicant:", Value: fmt.Sprintf("<@%s>", p.UserID), Inline: true},
			{Name: "Name:", Value: p.Name, Inline: true},
			{Name: "Reviewed by:", Value: fmt.Sprintf("<@%s>", reviewerID), Inline: true},
		},
	}
	if detail != "" {
		name := "Rank:"
		if !approved {
			name = "Reason:"
		}
		msg.Fields = append(msg.Fields, lifecycle.Field{Name: name, Value: detail})
	}
	return msg
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// Nickname is the community's standard display name for approved members.
func Nickname(name, rg string) string {
	return fmt.Sprintf("%s「%s」", name, rg)
}
