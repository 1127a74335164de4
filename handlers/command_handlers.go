package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"orgbot/bot"
	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/utils"
)

// AbsencesHandler answers /absences with the current active absences.
func AbsencesHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	records, err := b.Manager.ListActive(model.KindAbsence)
	if err != nil {
		log.Printf("Failed to list absences: %v", err)
		utils.SendErrorResponse(s, i, "Could not load the active absences.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Active Absences",
		Color: 0xd69e2e,
	}
	if len(records) == 0 {
		embed.Description = "Nobody is away right now."
	} else {
		var lines []string
		for _, rec := range records {
			back := "date unknown"
			if rec.ExpiresAt != nil {
				back = lifecycle.RelativeTimestamp(*rec.ExpiresAt)
			}
			line := fmt.Sprintf("<@%s> returns %s", rec.SubjectID, back)
			if rec.Reason != "" {
				line += fmt.Sprintf(" (%s)", rec.Reason)
			}
			lines = append(lines, line)
		}
		embed.Description = strings.Join(lines, "\n")
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to /absences: %v", err)
	}
}

// SanctionRemoveHandler answers /sanction-remove, lifting a sanction by its
// record ID. The slash command is the fallback for records whose panel
// components are gone.
func SanctionRemoveHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		utils.SendErrorResponse(s, i, "Provide the record ID.")
		return
	}
	recordID := options[0].IntValue()

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	err := b.Manager.Expire(recordID, model.TriggerManual)
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Sanction %d removed.", recordID))
	case errors.Is(err, lifecycle.ErrNotFound):
		utils.SendFollowUpError(s, i.Interaction, "No active sanction has that ID.")
	default:
		log.Printf("Failed to remove sanction %d: %v", recordID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not remove the sanction. Try again in a moment.")
	}
}
