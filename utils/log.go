package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

func levelColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendLog(s *discordgo.Session, channelID string, level LogLevel, module, operation, extraInfo string) error {
	if channelID == "" {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: levelColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
		},
	}
	if extraInfo != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: extraInfo})
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("failed to send %s log to channel %s: %w", level, channelID, err)
	}
	return nil
}

// LogInfo mirrors notable bot activity into a Discord channel so staff can
// follow what the bot did without reading process logs.
func LogInfo(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Info, module, operation, extraInfo)
}

func LogWarn(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Warn, module, operation, extraInfo)
}

func LogError(s *discordgo.Session, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Error, module, operation, extraInfo)
}
