// Package ticket implements private support channels: a panel button opens
// a per-member channel, and closing it archives a transcript before the
// channel is deleted.
package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"orgbot/bot"
	"orgbot/handlers/tag"
	"orgbot/model"
	"orgbot/utils"
	"orgbot/utils/database/tickets"
)

// EnsurePanel posts the ticket panel unless one is already present.
func EnsurePanel(b *bot.Bot) {
	channelID := b.Config.Ticket.PanelChannelID
	if channelID == "" {
		return
	}
	id, err := b.Platform.FindPanel(channelID, PanelTitle)
	if err != nil {
		log.Printf("Failed to look for ticket panel: %v", err)
		return
	}
	if id != "" {
		return
	}
	if _, err := b.Platform.SendPanel(channelID, Panel()); err != nil {
		log.Printf("Failed to post ticket panel: %v", err)
	}
}

// HandleComponent routes the open and close buttons.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	switch t.Action {
	case "open":
		handleOpenButton(s, i, b)
	case "close":
		handleClose(s, i, b)
	}
}

func handleOpenButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	open, err := b.Tickets.HasOpenTicket(i.Member.User.ID)
	if err != nil {
		log.Printf("Failed to check open tickets for %s: %v", i.Member.User.ID, err)
		utils.SendErrorResponse(s, i, "Could not check your tickets. Try again in a moment.")
		return
	}
	if open {
		utils.SendErrorResponse(s, i, "You already have an open ticket. Close it before opening another.")
		return
	}
	if err := utils.ShowModal(s, i, "ticket:form", "Open Ticket", openModal()); err != nil {
		log.Printf("Failed to show ticket modal: %v", err)
	}
}

// HandleModal creates the ticket channel from the submitted form.
func HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	if t.Action != "form" {
		return
	}
	data := i.ModalSubmitData()
	ticketType := strings.ToLower(strings.TrimSpace(utils.ModalValue(data, "type")))
	reason := utils.ModalValue(data, "reason")
	ownerID := i.Member.User.ID

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	// 1. Create the channel, visible only to the owner and staff.
	cfg := b.Config.Ticket
	channel, err := s.GuildChannelCreateComplex(b.Config.GuildID, discordgo.GuildChannelCreateData{
		Name:     fmt.Sprintf("ticket-%s", i.Member.User.Username),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: cfg.CategoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:   b.Config.GuildID, // @everyone
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    ownerID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
			{
				ID:    cfg.StaffRoleID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
		},
	})
	if err != nil {
		log.Printf("Failed to create ticket channel for %s: %v", ownerID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not create your ticket channel.")
		return
	}

	// 2. Persist the ticket before announcing it.
	ticket := &model.Ticket{
		ID:        uuid.NewString(),
		ChannelID: channel.ID,
		OwnerID:   ownerID,
		Type:      ticketType,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.Tickets.Insert(ticket); err != nil {
		log.Printf("Failed to save ticket %s: %v", ticket.ID, err)
		if _, derr := s.ChannelDelete(channel.ID); derr != nil {
			log.Printf("Failed to roll back ticket channel %s: %v", channel.ID, derr)
		}
		utils.SendFollowUpError(s, i.Interaction, "Could not open your ticket. Try again in a moment.")
		return
	}

	if _, err := b.Platform.SendPanel(channel.ID, Opening(ticketType, ownerID, reason, cfg.StaffRoleID)); err != nil {
		log.Printf("Failed to post ticket opening for %s: %v", ticket.ID, err)
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Your ticket is ready: <#%s>", channel.ID))
}

// handleClose archives the channel's transcript, closes the ticket and
// deletes the channel. Only the owner or staff may close.
func handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ticket, err := b.Tickets.GetOpenByChannel(i.ChannelID)
	if err != nil {
		if errors.Is(err, tickets.ErrNotFound) {
			utils.SendErrorResponse(s, i, "This channel is not an open ticket.")
			return
		}
		log.Printf("Failed to load ticket for channel %s: %v", i.ChannelID, err)
		utils.SendErrorResponse(s, i, "Could not load this ticket.")
		return
	}
	closerID := i.Member.User.ID
	if closerID != ticket.OwnerID && !utils.HasRole(i.Member.Roles, b.Config.Ticket.StaffRoleID) {
		utils.SendErrorResponse(s, i, "Only the ticket owner or staff can close it.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	transcript := captureTranscript(s, ticket.ChannelID)
	if err := b.Tickets.Close(ticket.ID, closerID, transcript, time.Now().UTC()); err != nil {
		log.Printf("Failed to close ticket %s: %v", ticket.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not close the ticket. Try again in a moment.")
		return
	}

	publishTranscript(s, b, ticket, closerID, transcript)
	utils.SendFollowUp(s, i.Interaction, "Ticket closed. This channel will be deleted.")

	if _, err := s.ChannelDelete(ticket.ChannelID); err != nil {
		log.Printf("Failed to delete ticket channel %s: %v", ticket.ChannelID, err)
	}
}

// captureTranscript serializes the channel's recent history, oldest first.
func captureTranscript(s *discordgo.Session, channelID string) string {
	messages, err := s.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		log.Printf("Failed to fetch transcript for channel %s: %v", channelID, err)
		return ""
	}
	entries := make([]model.TranscriptEntry, 0, len(messages))
	for idx := len(messages) - 1; idx >= 0; idx-- {
		msg := messages[idx]
		if msg.Author == nil {
			continue
		}
		entries = append(entries, model.TranscriptEntry{
			Author:    msg.Author.Username,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		log.Printf("Failed to encode transcript for channel %s: %v", channelID, err)
		return ""
	}
	return string(raw)
}

// publishTranscript posts the closed ticket's summary and transcript file to
// the archive channel.
func publishTranscript(s *discordgo.Session, b *bot.Bot, ticket *model.Ticket, closerID, transcript string) {
	channelID := b.Config.Ticket.TranscriptChannelID
	if channelID == "" {
		return
	}
	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "Ticket Closed",
			Color: panelColor,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Ticket", Value: ticket.ID, Inline: true},
				{Name: "Type", Value: ticket.Type, Inline: true},
				{Name: "Owner", Value: fmt.Sprintf("<@%s>", ticket.OwnerID), Inline: true},
				{Name: "Closed by", Value: fmt.Sprintf("<@%s>", closerID), Inline: true},
				{Name: "Subject", Value: ticket.Reason},
			},
		}},
	}
	if transcript != "" {
		send.Files = []*discordgo.File{{
			Name:        fmt.Sprintf("transcript-%s.json", ticket.ID),
			ContentType: "application/json",
			Reader:      strings.NewReader(transcript),
		}}
	}
	if _, err := s.ChannelMessageSendComplex(channelID, send); err != nil {
		log.Printf("Failed to publish transcript for ticket %s: %v", ticket.ID, err)
	}
}
