// Package registration implements approval-gated onboarding: newcomers get
// a pending role and submit a form, staff approve with a rank from the
// hierarchy table or deny with a reason.
package registration

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"orgbot/bot"
	"orgbot/handlers/tag"
	"orgbot/model"
	"orgbot/utils"
	"orgbot/utils/database/registrations"
)

var nonDigits = regexp.MustCompile(`\D`)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// EnsurePanel posts the registration panel unless one is already present.
func EnsurePanel(b *bot.Bot) {
	channelID := b.Config.Registration.PanelChannelID
	if channelID == "" {
		return
	}
	id, err := b.Platform.FindPanel(channelID, PanelTitle)
	if err != nil {
		log.Printf("Failed to look for registration panel: %v", err)
		return
	}
	if id != "" {
		return
	}
	if _, err := b.Platform.SendPanel(channelID, Panel()); err != nil {
		log.Printf("Failed to post registration panel: %v", err)
	}
}

// HandleMemberAdd puts the pending role on every newcomer so channel
// permissions keep them in the onboarding area until approved.
func HandleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	roleID := b.Config.Registration.PendingRoleID
	if roleID == "" || m.User.Bot {
		return
	}
	if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, roleID); err != nil {
		log.Printf("Failed to add pending role to %s: %v", m.User.ID, err)
	}
}

func isStaff(i *discordgo.InteractionCreate, b *bot.Bot) bool {
	return i.Member != nil && utils.HasRole(i.Member.Roles, b.Config.Registration.StaffRoleID)
}

// HandleComponent routes the panel button and the review components.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	switch t.Action {
	case "open":
		if err := utils.ShowModal(s, i, "registration:form", "Registration", formModal()); err != nil {
			log.Printf("Failed to show registration modal: %v", err)
		}
	case "role":
		if !isStaff(i, b) {
			utils.SendErrorResponse(s, i, "Only staff can review registrations.")
			return
		}
		handleApprove(s, i, b, t.Arg)
	case "deny":
		if !isStaff(i, b) {
			utils.SendErrorResponse(s, i, "Only staff can review registrations.")
			return
		}
		modal := []discordgo.MessageComponent{
			utils.TextInputRow("reason", "Why is this registration denied?", "", discordgo.TextInputParagraph, true),
		}
		if err := utils.ShowModal(s, i, "registration:deny_form:"+t.Arg, "Deny Registration", modal); err != nil {
			log.Printf("Failed to show deny modal: %v", err)
		}
	}
}

// HandleModal processes the registration form and the deny form.
func HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	switch t.Action {
	case "form":
		handleSubmit(s, i, b)
	case "deny_form":
		if !isStaff(i, b) {
			utils.SendErrorResponse(s, i, "Only staff can review registrations.")
			return
		}
		handleDeny(s, i, b, t.Arg)
	}
}

func handleSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	// 1. Validate the form.
	data := i.ModalSubmitData()
	name := strings.TrimSpace(utils.ModalValue(data, "name"))
	if len(strings.Fields(name)) < 2 {
		utils.SendErrorResponse(s, i, "Enter your full name (name and surname).")
		return
	}
	rg := nonDigits.ReplaceAllString(utils.ModalValue(data, "rg"), "")
	if rg == "" {
		utils.SendErrorResponse(s, i, "The RG must contain digits.")
		return
	}
	phone := nonDigits.ReplaceAllString(utils.ModalValue(data, "phone"), "")
	if len(phone) < 8 {
		utils.SendErrorResponse(s, i, "That phone number does not look valid.")
		return
	}
	recruiter := strings.TrimSpace(utils.ModalValue(data, "recruiter"))

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	// 2. Persist the pending form. The primary key rejects a second one.
	pending := &model.PendingRegistration{
		UserID:      i.Member.User.ID,
		Name:        name,
		RG:          rg,
		Phone:       phone,
		Recruiter:   recruiter,
		SubmittedAt: nowUTC(),
	}
	if err := b.Registrations.InsertPending(pending); err != nil {
		if errors.Is(err, registrations.ErrAlreadyPending) {
			utils.SendFollowUpError(s, i.Interaction, "You already have a registration awaiting review.")
			return
		}
		log.Printf("Failed to save registration for %s: %v", pending.UserID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not submit your registration. Try again in a moment.")
		return
	}

	// 3. Post the review embed for staff.
	messageID, err := b.Platform.SendPanel(b.Config.Registration.PendingChannelID,
		PendingReview(pending, b.Config.Registration.Roles))
	if err != nil {
		log.Printf("Failed to post pending registration for %s: %v", pending.UserID, err)
	} else if err := b.Registrations.SetPendingMessage(pending.UserID, messageID); err != nil {
		log.Printf("Failed to link pending message for %s: %v", pending.UserID, err)
	}

	utils.SendFollowUp(s, i.Interaction, "Registration submitted! Staff will review it shortly.")
}

func handleApprove(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, userID string) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	roleID := values[0]
	role := rankedRole(b.Config.Registration.Roles, roleID)
	if role == nil {
		utils.SendErrorResponse(s, i, "That rank is not in the hierarchy table.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	pending, err := b.Registrations.GetPendingByUser(userID)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			utils.SendFollowUpError(s, i.Interaction, "This registration was already reviewed.")
			return
		}
		log.Printf("Failed to load pending registration for %s: %v", userID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not load the registration.")
		return
	}

	guildID := b.Config.GuildID
	// Grant the rank, set the standard nickname, drop the pending role. Each
	// step is individually fallible; the approval still goes through.
	if err := s.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		log.Printf("Failed to grant rank %s to %s: %v", roleID, userID, err)
	}
	if err := s.GuildMemberNickname(guildID, userID, Nickname(pending.Name, pending.RG)); err != nil {
		log.Printf("Failed to set nickname for %s: %v", userID, err)
	}
	if pendingRole := b.Config.Registration.PendingRoleID; pendingRole != "" {
		if err := s.GuildMemberRoleRemove(guildID, userID, pendingRole); err != nil {
			log.Printf("Failed to remove pending role from %s: %v", userID, err)
		}
	}

	profile := &model.MemberProfile{
		UserID:       userID,
		Name:         pending.Name,
		RG:           pending.RG,
		RoleID:       roleID,
		RegisteredAt: nowUTC(),
	}
	if _, err := b.Registrations.InsertMember(profile); err != nil {
		log.Printf("Failed to save member profile for %s: %v", userID, err)
	}
	if err := b.Registrations.DeletePending(userID); err != nil {
		log.Printf("Failed to delete pending registration for %s: %v", userID, err)
	}

	closeReview(b, pending, true, i.Member.User.ID, role.Name)
	if b.RosterListing != nil {
		if err := b.RosterListing.Refresh(); err != nil {
			log.Printf("Failed to refresh roster after approval: %v", err)
		}
	}
	utils.LogInfo(s, b.Config.Registration.LogChannelID, "Registration", "Approve",
		fmt.Sprintf("<@%s> approved as %s by <@%s>.", userID, role.Name, i.Member.User.ID))
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("<@%s> approved as **%s**.", userID, role.Name))
}

func handleDeny(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, userID string) {
	reason := utils.ModalValue(i.ModalSubmitData(), "reason")

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	pending, err := b.Registrations.GetPendingByUser(userID)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			utils.SendFollowUpError(s, i.Interaction, "This registration was already reviewed.")
			return
		}
		log.Printf("Failed to load pending registration for %s: %v", userID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not load the registration.")
		return
	}
	if err := b.Registrations.DeletePending(userID); err != nil {
		log.Printf("Failed to delete pending registration for %s: %v", userID, err)
	}

	closeReview(b, pending, false, i.Member.User.ID, reason)
	notifyDenied(s, userID, reason)
	utils.LogInfo(s, b.Config.Registration.LogChannelID, "Registration", "Deny",
		fmt.Sprintf("Registration of <@%s> denied by <@%s>: %s", userID, i.Member.User.ID, reason))
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Registration of <@%s> denied.", userID))
}

// closeReview swaps the pending embed for its decided form, dropping the
// interactive components.
func closeReview(b *bot.Bot, pending *model.PendingRegistration, approved bool, reviewerID, detail string) {
	if pending.MessageID == "" {
		return
	}
	msg := ReviewClosed(pending, approved, reviewerID, detail)
	if err := b.Platform.EditPanel(b.Config.Registration.PendingChannelID, pending.MessageID, msg); err != nil {
		log.Printf("Failed to close review embed for %s: %v", pending.UserID, err)
	}
}

func notifyDenied(s *discordgo.Session, userID, reason string) {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		log.Printf("Failed to open DM with %s: %v", userID, err)
		return
	}
	content := "Your registration was denied."
	if reason != "" {
		content += " Reason: " + reason
	}
	if _, err := s.ChannelMessageSend(channel.ID, content); err != nil {
		log.Printf("Failed to DM %s: %v", userID, err)
	}
}

func rankedRole(table []model.RankedRole, roleID string) *model.RankedRole {
	for i := range table {
		if table[i].ID == roleID {
			return &table[i]
		}
	}
	return nil
}
