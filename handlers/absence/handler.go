// Package absence implements the leave-request workflow: a fixed request
// panel, one record message per absence, the absent role while away, and an
// early-return button on each record.
package absence

import (
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"

	"orgbot/bot"
	"orgbot/handlers/tag"
	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/utils"
)

// EnsurePanel posts the request panel unless one is already present.
func EnsurePanel(b *bot.Bot) {
	channelID := b.Config.Absence.PanelChannelID
	if channelID == "" {
		return
	}
	id, err := b.Platform.FindPanel(channelID, RequestPanelTitle)
	if err != nil {
		log.Printf("Failed to look for absence panel: %v", err)
		return
	}
	if id != "" {
		return
	}
	if _, err := b.Platform.SendPanel(channelID, RequestPanel()); err != nil {
		log.Printf("Failed to post absence panel: %v", err)
	}
}

// HandleComponent routes the feature's buttons.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	switch t.Action {
	case "request":
		if err := utils.ShowModal(s, i, "absence:form", "Absence Request", requestModal()); err != nil {
			log.Printf("Failed to show absence modal: %v", err)
		}
	case "return":
		handleEarlyReturn(s, i, b, t.Arg)
	}
}

// handleEarlyReturn ends the clicking member's own absence. The button
// carries the owner's ID, so anyone else clicking it is rejected before any
// state is touched.
func handleEarlyReturn(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, ownerID string) {
	if i.Member == nil || i.Member.User.ID != ownerID {
		utils.SendErrorResponse(s, i, "Only the member on this record can end their absence.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	err := b.Manager.ExpireBySubject(ownerID, model.KindAbsence, model.TriggerEarlyReturn)
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, "Welcome back! Your absence has been closed.")
	case errors.Is(err, lifecycle.ErrNotFound):
		// Already closed by the sweeper or by staff.
		utils.SendFollowUp(s, i.Interaction, "This absence is already closed.")
	default:
		log.Printf("Failed to close absence for %s: %v", ownerID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not close your absence. Try again in a moment.")
	}
}

// HandleModal processes the submitted absence form.
func HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	if t.Action != "form" {
		return
	}
	data := i.ModalSubmitData()
	rg := utils.ModalValue(data, "rg")
	reason := utils.ModalValue(data, "reason")

	entry, err := utils.ParseDate(utils.ModalValue(data, "entry_date"))
	if err != nil {
		utils.SendErrorResponse(s, i, "The first-day date must look like DD/MM/YYYY.")
		return
	}
	ret, err := utils.ParseDate(utils.ModalValue(data, "return_date"))
	if err != nil {
		utils.SendErrorResponse(s, i, "The return date must look like DD/MM/YYYY.")
		return
	}
	if ret.Before(entry) {
		utils.SendErrorResponse(s, i, "The return date cannot be before the first day away.")
		return
	}
	expiresAt := utils.EndOfDay(ret)

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	userID := i.Member.User.ID
	panel := RecordPanel(userID, rg, reason, entry, ret)
	_, err = b.Manager.Create(lifecycle.CreateRequest{
		Kind:         model.KindAbsence,
		SubjectID:    userID,
		SubjectLabel: i.Member.User.Username,
		Reason:       reason,
		IssuerID:     userID,
		ExpiresAt:    &expiresAt,
		Panel:        &panel,
	})
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, "Your absence is registered. Safe travels!")
	case errors.Is(err, lifecycle.ErrAlreadyActive):
		utils.SendFollowUpError(s, i.Interaction, "You already have an active absence. Close it before opening another.")
	default:
		log.Printf("Failed to create absence for %s: %v", userID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not register your absence. Try again in a moment.")
	}
}
