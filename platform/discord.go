// Package platform adapts discordgo to the lifecycle engine's external
// state contract.
package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"orgbot/lifecycle"
)

// Adapter implements lifecycle.Platform on a discordgo session. Failures
// caused by the referenced object having disappeared (member left, role or
// message deleted) are wrapped in lifecycle.ErrGone so callers can treat
// them as benign no-ops.
type Adapter struct {
	Session *discordgo.Session
}

func New(session *discordgo.Session) *Adapter {
	return &Adapter{Session: session}
}

func (a *Adapter) GrantRole(guildID, userID, roleID string) error {
	if err := a.Session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return wrapGone(fmt.Errorf("failed to add role %s to user %s: %w", roleID, userID, err))
	}
	return nil
}

func (a *Adapter) RevokeRole(guildID, userID, roleID string) error {
	if err := a.Session.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
		return wrapGone(fmt.Errorf("failed to remove role %s from user %s: %w", roleID, userID, err))
	}
	return nil
}

func (a *Adapter) SendPanel(channelID string, msg lifecycle.Message) (string, error) {
	sent, err := a.Session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{buildEmbed(msg)},
		Components: buildComponents(msg),
	})
	if err != nil {
		return "", wrapGone(fmt.Errorf("failed to send panel to channel %s: %w", channelID, err))
	}
	return sent.ID, nil
}

func (a *Adapter) EditPanel(channelID, messageID string, msg lifecycle.Message) error {
	embeds := []*discordgo.MessageEmbed{buildEmbed(msg)}
	components := buildComponents(msg)
	_, err := a.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return wrapGone(fmt.Errorf("failed to edit message %s in channel %s: %w", messageID, channelID, err))
	}
	return nil
}

func (a *Adapter) AppendPanelField(channelID, messageID string, field lifecycle.Field, color int) error {
	original, err := a.Session.ChannelMessage(channelID, messageID)
	if err != nil {
		return wrapGone(fmt.Errorf("failed to fetch message %s in channel %s: %w", messageID, channelID, err))
	}
	if len(original.Embeds) == 0 {
		return fmt.Errorf("message %s in channel %s has no embed to update", messageID, channelID)
	}

	embed := original.Embeds[0]
	embed.Color = color
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   field.Name,
		Value:  field.Value,
		Inline: field.Inline,
	})

	embeds := []*discordgo.MessageEmbed{embed}
	components := []discordgo.MessageComponent{}
	_, err = a.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return wrapGone(fmt.Errorf("failed to edit message %s in channel %s: %w", messageID, channelID, err))
	}
	return nil
}

func (a *Adapter) DeleteMessage(channelID, messageID string) error {
	if err := a.Session.ChannelMessageDelete(channelID, messageID); err != nil {
		return wrapGone(fmt.Errorf("failed to delete message %s in channel %s: %w", messageID, channelID, err))
	}
	return nil
}

func (a *Adapter) SendAudit(channelID, content string) (string, error) {
	sent, err := a.Session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", wrapGone(fmt.Errorf("failed to send audit entry to channel %s: %w", channelID, err))
	}
	return sent.ID, nil
}

func (a *Adapter) FindPanel(channelID, title string) (string, error) {
	messages, err := a.Session.ChannelMessages(channelID, 50, "", "", "")
	if err != nil {
		return "", wrapGone(fmt.Errorf("failed to fetch messages from channel %s: %w", channelID, err))
	}
	selfID := a.Session.State.User.ID
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != selfID || len(msg.Embeds) == 0 {
			continue
		}
		if strings.Contains(msg.Embeds[0].Title, title) {
			return msg.ID, nil
		}
	}
	return "", nil
}

func buildEmbed(msg lifecycle.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if msg.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: msg.Image}
	}
	if msg.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: msg.Thumbnail}
	}
	if msg.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	return embed
}

func buildComponents(msg lifecycle.Message) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	if len(msg.Buttons) > 0 {
		var row discordgo.ActionsRow
		for _, b := range msg.Buttons {
			button := discordgo.Button{
				Label:    b.Label,
				Style:    buttonStyle(b.Style),
				CustomID: b.CustomID,
			}
			if b.Emoji != "" {
				button.Emoji = &discordgo.ComponentEmoji{Name: b.Emoji}
			}
			row.Components = append(row.Components, button)
		}
		components = append(components, row)
	}
	for _, sel := range msg.Selects {
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
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{menu},
		})
	}
	return components
}

func buttonStyle(style lifecycle.ButtonStyle) discordgo.ButtonStyle {
	switch style {
	case lifecycle.ButtonSuccess:
		return discordgo.SuccessButton
	case lifecycle.ButtonDanger:
		return discordgo.DangerButton
	case lifecycle.ButtonSecondary:
		return discordgo.SecondaryButton
	default:
		return discordgo.PrimaryButton
	}
}

// wrapGone tags REST errors whose cause is a vanished platform object.
func wrapGone(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeUnknownRole,
			discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%w: %w", lifecycle.ErrGone, err)
		}
	}
	return err
}
