// Package commands declares the guild's slash commands.
package commands

import "github.com/bwmarrin/discordgo"

// GenerateCommands returns the full command set registered at startup.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "status",
			Description: "Show host metrics and the bot's current workload",
		},
		{
			Name:        "absences",
			Description: "List the members currently on absence",
		},
		{
			Name:        "sanction-remove",
			Description: "Remove an active sanction by its record ID",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "record",
					Description: "The record ID shown in the sanction embed footer",
					Required:    true,
				},
			},
		},
	}
}
