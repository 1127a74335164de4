package bot

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"orgbot/commands"
	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/panel"
	"orgbot/platform"
	"orgbot/utils/database/records"
	"orgbot/utils/database/registrations"
	"orgbot/utils/database/tickets"
)

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Platform           *platform.Adapter
	Manager            *lifecycle.Manager
	Records            *records.Store
	Registrations      *registrations.Store
	Tickets            *tickets.Store
	BlacklistListing   *panel.Listing
	RosterListing      *panel.Listing
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand
	StartTime          time.Time

	scheduler *Scheduler
}

func New(cfg *model.Config, recordStore *records.Store, regStore *registrations.Store, ticketStore *tickets.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	adapter := platform.New(dg)
	manager := lifecycle.NewManager(recordStore, adapter, cfg.GuildID, buildPolicies(cfg))

	b := &Bot{
		Session:       dg,
		Config:        cfg,
		Platform:      adapter,
		Manager:       manager,
		Records:       recordStore,
		Registrations: regStore,
		Tickets:       ticketStore,
		StartTime:     time.Now(),
	}
	b.scheduler = NewScheduler(b)
	return b, nil
}

// buildPolicies maps the configuration onto one lifecycle policy per record
// kind. Absences carry an explicit return date, so their policy has no
// duration; blacklist entries live on a shared listing panel, so theirs has
// no panel channel.
func buildPolicies(cfg *model.Config) map[model.RecordKind]lifecycle.Policy {
	policies := map[model.RecordKind]lifecycle.Policy{
		model.KindAbsence: {
			Name:           "Absence",
			RoleID:         cfg.Absence.RoleID,
			PanelChannelID: cfg.Absence.RecordsChannelID,
			AuditChannelID: cfg.Absence.LogChannelID,
		},
		model.KindBlacklist: {
			Name:           "Blacklist",
			AuditChannelID: cfg.Blacklist.LogChannelID,
		},
	}
	for _, kp := range cfg.Sanction.Kinds {
		policies[kp.Kind] = lifecycle.Policy{
			Name:           kp.Name,
			RoleID:         kp.RoleID,
			Days:           kp.Days,
			PanelChannelID: cfg.Sanction.LogChannelID,
			AuditChannelID: cfg.Sanction.AuditChannelID,
		}
	}
	return policies
}

func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
}

// RefreshCommands overwrites the guild's slash commands with the current set.
func (b *Bot) RefreshCommands() {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), b.Config.GuildID)
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, b.Config.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", b.Config.GuildID, err)
		return
	}
	b.RegisteredCommands = registered
}
