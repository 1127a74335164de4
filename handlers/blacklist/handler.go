// Package blacklist implements the permanent exclusion list: one listing
// panel enumerating every entry, re-rendered in full on every change.
package blacklist

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"orgbot/bot"
	"orgbot/handlers/tag"
	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/utils"
)

func canManage(i *discordgo.InteractionCreate, b *bot.Bot) bool {
	return i.Member != nil && utils.HasRole(i.Member.Roles, b.Config.Blacklist.ManagerRoleID)
}

// HandleComponent routes the listing panel's buttons and select menus.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	if !canManage(i, b) {
		utils.SendErrorResponse(s, i, "You do not have permission to manage the blacklist.")
		return
	}
	switch t.Action {
	case "add":
		if err := utils.ShowModal(s, i, "blacklist:form", "Add to Blacklist", addModal()); err != nil {
			log.Printf("Failed to show blacklist modal: %v", err)
		}
	case "remove":
		sendRemovePicker(s, i, b)
	case "remove_select":
		handleRemoveSelect(s, i, b)
	}
}

func addModal() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.TextInputRow("member_id", "Member ID", "123456789012345678", discordgo.TextInputShort, true),
		utils.TextInputRow("member_name", "Member name", "As known in the community", discordgo.TextInputShort, true),
		utils.TextInputRow("reason", "Reason (optional)", "", discordgo.TextInputParagraph, false),
	}
}

// HandleModal processes the add form. Blacklist entries may omit the reason;
// the listing shows one only when given.
func HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	if t.Action != "form" {
		return
	}
	if !canManage(i, b) {
		utils.SendErrorResponse(s, i, "You do not have permission to manage the blacklist.")
		return
	}
	data := i.ModalSubmitData()
	memberID := utils.ExtractUserID(utils.ModalValue(data, "member_id"))
	if memberID == "" {
		utils.SendErrorResponse(s, i, "The member ID must be a plain user ID.")
		return
	}
	name := utils.ModalValue(data, "member_name")
	reason := utils.ModalValue(data, "reason")

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	_, err := b.Manager.Create(lifecycle.CreateRequest{
		Kind:         model.KindBlacklist,
		SubjectID:    memberID,
		SubjectLabel: name,
		Reason:       reason,
		IssuerID:     i.Member.User.ID,
	})
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("`%s` added to the blacklist.", name))
	case errors.Is(err, lifecycle.ErrAlreadyActive):
		utils.SendFollowUpError(s, i.Interaction, "That member is already on the blacklist.")
	default:
		log.Printf("Failed to blacklist %s: %v", memberID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not add the entry. Try again in a moment.")
	}
}

func sendRemovePicker(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	records, err := b.Manager.ListActive(model.KindBlacklist)
	if err != nil {
		log.Printf("Failed to list blacklist records: %v", err)
		utils.SendErrorResponse(s, i, "Could not load the blacklist.")
		return
	}
	if len(records) == 0 {
		utils.SendSimpleResponse(s, i, "The blacklist is empty.")
		return
	}
	if len(records) > 25 {
		records = records[:25] // select menu limit
	}

	menu := discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    "blacklist:remove_select",
		Placeholder: "Choose the entry to remove",
	}
	for _, rec := range records {
		menu.Options = append(menu.Options, discordgo.SelectMenuOption{
			Label:       utils.Truncate(rec.SubjectLabel, 100),
			Value:       strconv.FormatInt(rec.ID, 10),
			Description: "ID: " + rec.SubjectID,
		})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Which entry should be removed?",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
			},
		},
	})
	if err != nil {
		log.Printf("Failed to send blacklist remove picker: %v", err)
	}
}

func handleRemoveSelect(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	recordID, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		utils.SendErrorResponse(s, i, "That selection is not a valid entry.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	err = b.Manager.Expire(recordID, model.TriggerManual)
	switch {
	case err == nil:
		utils.SendFollowUp(s, i.Interaction, "Entry removed from the blacklist.")
	case errors.Is(err, lifecycle.ErrNotFound):
		utils.SendFollowUpError(s, i.Interaction, "That entry is already gone.")
	default:
		log.Printf("Failed to remove blacklist entry %d: %v", recordID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not remove the entry. Try again in a moment.")
	}
}
