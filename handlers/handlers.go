// Package handlers wires every Discord event to its feature package. Each
// component custom ID is parsed once into a typed tag and routed by the
// system that owns it.
package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"orgbot/bot"
	"orgbot/handlers/absence"
	"orgbot/handlers/blacklist"
	"orgbot/handlers/registration"
	"orgbot/handlers/roster"
	"orgbot/handlers/sanction"
	"orgbot/handlers/tag"
	"orgbot/handlers/ticket"
	"orgbot/model"
	"orgbot/panel"
	"orgbot/utils"
)

func Register(b *bot.Bot) {
	// The blacklist lives on a single listing panel; the manager re-renders
	// it after every create and expire.
	b.BlacklistListing = panel.NewRecordListing(b.Records, b.Platform, model.KindBlacklist,
		b.Config.Blacklist.ChannelID, blacklist.PanelTitle, blacklist.Render)
	b.Manager.SetRefresher(model.KindBlacklist, b.BlacklistListing)

	// The roster shares the same self-healing listing machinery, fed from
	// the guild's members instead of the record store.
	b.RosterListing = roster.NewPanel(b)

	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			StatusHandler(s, i, b)
		},
		"absences": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			AbsencesHandler(s, i, b)
		},
		"sanction-remove": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !utils.HasRole(i.Member.Roles, b.Config.Sanction.ManagerRoleID) {
				utils.SendErrorResponse(s, i, "You do not have permission to manage sanctions.")
				return
			}
			SanctionRemoveHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
		// Panels survive restarts; each Ensure is a no-op when the panel is
		// already in place.
		absence.EnsurePanel(b)
		sanction.EnsurePanel(b)
		registration.EnsurePanel(b)
		ticket.EnsurePanel(b)
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			t, ok := tag.Parse(i.MessageComponentData().CustomID)
			if !ok {
				return
			}
			dispatchComponent(s, i, b, t)
		case discordgo.InteractionModalSubmit:
			t, ok := tag.Parse(i.ModalSubmitData().CustomID)
			if !ok {
				return
			}
			dispatchModal(s, i, b, t)
		}
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		registration.HandleMemberAdd(s, m, b)
	})
}

func dispatchComponent(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	switch t.System {
	case tag.SystemAbsence:
		absence.HandleComponent(s, i, b, t)
	case tag.SystemSanction:
		sanction.HandleComponent(s, i, b, t)
	case tag.SystemBlacklist:
		blacklist.HandleComponent(s, i, b, t)
	case tag.SystemRegistration:
		registration.HandleComponent(s, i, b, t)
	case tag.SystemTicket:
		ticket.HandleComponent(s, i, b, t)
	}
}

func dispatchModal(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, t tag.ComponentTag) {
	switch t.System {
	case tag.SystemAbsence:
		absence.HandleModal(s, i, b, t)
	case tag.SystemSanction:
		sanction.HandleModal(s, i, b, t)
	case tag.SystemBlacklist:
		blacklist.HandleModal(s, i, b, t)
	case tag.SystemRegistration:
		registration.HandleModal(s, i, b, t)
	case tag.SystemTicket:
		ticket.HandleModal(s, i, b, t)
	}
}
