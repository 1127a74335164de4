// Package sanction implements the tiered disciplinary workflow: a staff
// panel, one detailed record embed per sanction, a role per tier, and
// timed removal for every tier except the terminal one.
package sanction

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

// EnsurePanel posts the management panel unless one is already present.
func EnsurePanel(b *bot.Bot) {
	channelID := b.Config.Sanction.PanelChannelID
	if channelID == "" {
		return
	}
	id, err := b.Platform.FindPanel(channelID, MainPanelTitle)
	if err != nil {
		log.Printf("Failed to look for sanction panel: %v", err)
		return
	}
	if id != "" {
		return
	}
	if _, err := b.Platform.SendPanel(channelID, MainPanel()); err != nil {
		log.Printf("Failed to post sanction panel: %v", err)
	}
}

func canManage(i *discordgo.InteractionCreate, b *bot.Bot) bool {
	return i.Member != nil && utils.HasRole(i.Member.Roles, b.Config.Sanction.ManagerRoleID)
}

// HandleComponent routes the panel's buttons and select menus.
func HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	if !canManage(i, b) {
		utils.SendErrorResponse(s, i, "You do not have permission to manage sanctions.")
		return
	}
	switch t.Action {
	case "apply":
		sendTierPicker(s, i, b)
	case "tier":
		showApplyModal(s, i)
	case "remove":
		sendRemovePicker(s, i, b)
	case "remove_select":
		handleRemoveSelect(s, i, b)
	case "remove_id":
		if err := utils.ShowModal(s, i, "sanction:remove_modal", "Remove Sanction by ID", removeByIDModal()); err != nil {
			log.Printf("Failed to show remove-by-id modal: %v", err)
		}
	}
}

func sendTierPicker(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	sel := tierSelect(b.Config.Sanction.Kinds)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Which tier applies?",
			Flags:      discordgo.MessageFlagsEphemeral,
			Components: selectRow(sel),
		},
	})
	if err != nil {
		log.Printf("Failed to send tier picker: %v", err)
	}
}

func showApplyModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	customID := "sanction:apply_form:" + values[0]
	if err := utils.ShowModal(s, i, customID, "Apply Sanction", applyModal()); err != nil {
		log.Printf("Failed to show apply modal: %v", err)
	}
}

// sendRemovePicker offers the active non-terminal sanctions in a select
// menu. Terminal sanctions never appear here; lifting one takes an explicit
// removal by ID.
func sendRemovePicker(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	sanctions, err := b.Records.ListSanctions()
	if err != nil {
		log.Printf("Failed to list sanction records: %v", err)
		utils.SendErrorResponse(s, i, "Could not load the active sanctions.")
		return
	}
	var removable []model.SanctionRecord
	for _, rec := range sanctions {
		if rec.Kind == model.KindSanctionTerminal {
			continue
		}
		removable = append(removable, rec)
	}
	if len(removable) == 0 {
		utils.SendSimpleResponse(s, i, "There are no removable sanctions right now.")
		return
	}
	if len(removable) > 25 {
		removable = removable[:25] // select menu limit
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "Which sanction should be removed?",
			Flags:      discordgo.MessageFlagsEphemeral,
			Components: selectRow(removeSelect(removable)),
		},
	})
	if err != nil {
		log.Printf("Failed to send remove picker: %v", err)
	}
}

func handleRemoveSelect(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	recordID, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		utils.SendErrorResponse(s, i, "That selection is not a valid record.")
		return
	}
	removeByID(s, i, b, recordID)
}

func removeByID(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, recordID int64) {
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

// HandleModal processes the apply and remove-by-id forms.
func HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	if !canManage(i, b) {
		utils.SendErrorResponse(s, i, "You do not have permission to manage sanctions.")
		return
	}
	switch t.Action {
	case "apply_form":
		handleApply(s, i, b, model.RecordKind(t.Arg))
	case "remove_modal":
		data := i.ModalSubmitData()
		recordID, err := strconv.ParseInt(utils.ModalValue(data, "record_id"), 10, 64)
		if err != nil {
			utils.SendErrorResponse(s, i, "The record ID must be a number.")
			return
		}
		removeByID(s, i, b, recordID)
	}
}

func handleApply(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind model.RecordKind) {
	// 1. Validate the form.
	data := i.ModalSubmitData()
	targetID := utils.ExtractUserID(utils.ModalValue(data, "member"))
	if targetID == "" {
		utils.SendErrorResponse(s, i, "Provide the member as a user ID or @mention.")
		return
	}
	reason := utils.ModalValue(data, "reason")
	policy := b.Config.Sanction.SanctionPolicy(kind)
	if policy == nil || !kind.IsSanction() {
		utils.SendErrorResponse(s, i, "That sanction tier is not configured.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	// 2. The target must still be in the guild.
	member, err := s.GuildMember(b.Config.GuildID, targetID)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, "Could not find that member in the server.")
		return
	}
	label := member.User.Username
	if member.Nick != "" {
		label = member.Nick
	}

	// 3. A member carries at most one sanction: close any existing one first
	// so its role comes off before the new tier's role goes on.
	for _, existing := range model.SanctionKinds() {
		err := b.Manager.ExpireBySubject(targetID, existing, model.TriggerManual)
		if err != nil && !errors.Is(err, lifecycle.ErrNotFound) {
			log.Printf("Failed to supersede %s sanction for %s: %v", existing, targetID, err)
		}
	}

	// 4. Create the record; the manager grants the role and posts the embed.
	rec, err := b.Manager.Create(lifecycle.CreateRequest{
		Kind:         kind,
		SubjectID:    targetID,
		SubjectLabel: label,
		Reason:       reason,
		IssuerID:     i.Member.User.ID,
		Panel:        applyPanel(targetID, label, reason, *policy),
	})
	if err != nil {
		log.Printf("Failed to apply %s to %s: %v", kind, targetID, err)
		utils.SendFollowUpError(s, i.Interaction, "Could not apply the sanction. Try again in a moment.")
		return
	}

	// 5. A terminal sanction also strips the member's hierarchy roles, which
	// moves them off the roster.
	if kind == model.KindSanctionTerminal {
		for _, roleID := range utils.RankedRoleIDs(b.Config.Registration.Roles) {
			if !utils.HasRole(member.Roles, roleID) {
				continue
			}
			if err := b.Platform.RevokeRole(b.Config.GuildID, targetID, roleID); err != nil {
				log.Printf("Failed to strip role %s from %s: %v", roleID, targetID, err)
			}
		}
		if b.RosterListing != nil {
			if err := b.RosterListing.Refresh(); err != nil {
				log.Printf("Failed to refresh roster after terminal sanction: %v", err)
			}
		}
	}

	utils.SendFollowUp(s, i.Interaction,
		fmt.Sprintf("%s applied to <@%s> (record %d).", policy.Name, targetID, rec.ID))
}

// applyPanel pre-renders the record embed with the expiry the policy will
// assign, so the posted panel matches the stored record.
func applyPanel(targetID, label, reason string, policy model.KindPolicy) *lifecycle.Message {
	msg := AppliedPanel(targetID, label, reason, policy, policyExpiry(policy))
	return &msg
}

func selectRow(sel lifecycle.Select) []discordgo.MessageComponent {
	menu := discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    sel.CustomID,
		Placeholder: sel.Placeholder,
	}
	for _, opt := range sel.Options {
		menu.Options = append(menu.Options, discordgo.SelectMenuOption{
			Label:       opt.Label,
			Value:       opt.Value,
			Description: opt.Description,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
	}
}
