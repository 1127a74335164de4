// Package roster renders the guild roster: every member grouped under their
// highest role from the hierarchy table, on one self-healing listing panel.
package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"orgbot/bot"
	"orgbot/lifecycle"
	"orgbot/model"
	"orgbot/panel"
	"orgbot/utils"
)

const (
	PanelTitle = "Organization Roster"
	panelColor = 0x2c5282

	membersPerPage = 1000 // Discord's GuildMembers page limit
	maxListed      = 40   // mentions shown per rank before "+N more"
)

// NewPanel builds the roster listing for the configured channel, or nil when
// no roster channel is set.
func NewPanel(b *bot.Bot) *panel.Listing {
	channelID := b.Config.Roster.ChannelID
	if channelID == "" {
		return nil
	}
	return panel.NewListing(b.Platform, "roster", channelID, PanelTitle, func() (lifecycle.Message, error) {
		members, err := fetchMembers(b.Session, b.Config.GuildID)
		if err != nil {
			return lifecycle.Message{}, err
		}
		return Render(members, b.Config.Registration.Roles), nil
	})
}

func fetchMembers(s *discordgo.Session, guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := s.GuildMembers(guildID, after, membersPerPage)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guild members: %w", err)
		}
		all = append(all, page...)
		if len(page) < membersPerPage {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// Render groups the members by their highest hierarchy role and lists every
// rank in table order, including the vacant ones. Members holding no ranked
// role (pending, bots) are left off the roster.
func Render(members []*discordgo.Member, table []model.RankedRole) lifecycle.Message {
	groups := make(map[string][]*discordgo.Member)
	total := 0
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		role := utils.HighestRankedRole(m.Roles, table)
		if role == nil {
			continue
		}
		groups[role.ID] = append(groups[role.ID], m)
		total++
	}

	ordered := make([]model.RankedRole, len(table))
	copy(ordered, table)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })

	msg := lifecycle.Message{
		Title:       PanelTitle,
		Color:       panelColor,
		Description: fmt.Sprintf("**%d** member(s) on the roster.", total),
	}
	for _, role := range ordered {
		held := groups[role.ID]
		msg.Fields = append(msg.Fields, lifecycle.Field{
			Name:  fmt.Sprintf("%s (%d)", role.Name, len(held)),
			Value: memberList(held),
		})
	}
	return msg
}

func memberList(members []*discordgo.Member) string {
	if len(members) == 0 {
		return "Vacant"
	}
	mentions := make([]string, 0, len(members))
	for i, m := range members {
		if i == maxListed {
			mentions = append(mentions, fmt.Sprintf("+%d more", len(members)-maxListed))
			break
		}
		mentions = append(mentions, fmt.Sprintf("<@%s>", m.User.ID))
	}
	return strings.Join(mentions, ", ")
}
