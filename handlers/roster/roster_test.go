package roster

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/model"
)

var hierarchy = []model.RankedRole{
	{ID: "role-boss", Rank: 1, Name: "Boss"},
	{ID: "role-manager", Rank: 2, Name: "Manager"},
	{ID: "role-member", Rank: 3, Name: "Member"},
}

func member(userID string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles}
}

func TestRenderGroupsByHighestRank(t *testing.T) {
	members := []*discordgo.Member{
		member("u1", "role-member"),
		// Holds two ranked roles; only the highest one counts.
		member("u2", "role-member", "role-boss"),
		member("u3", "role-manager"),
	}

	msg := Render(members, hierarchy)
	require.Len(t, msg.Fields, 3)
	assert.Equal(t, "Boss (1)", msg.Fields[0].Name)
	assert.Contains(t, msg.Fields[0].Value, "<@u2>")
	assert.Equal(t, "Manager (1)", msg.Fields[1].Name)
	assert.Equal(t, "Member (1)", msg.Fields[2].Name)
	assert.Contains(t, msg.Fields[2].Value, "<@u1>")
	assert.NotContains(t, msg.Fields[2].Value, "<@u2>")
	assert.Contains(t, msg.Description, "3")
}

func TestRenderKeepsTableOrderAndVacancies(t *testing.T) {
	// The table arrives unordered; the roster still lists ranks top-down,
	// keeping empty ranks visible.
	shuffled := []model.RankedRole{hierarchy[2], hierarchy[0], hierarchy[1]}
	msg := Render([]*discordgo.Member{member("u1", "role-member")}, shuffled)

	require.Len(t, msg.Fields, 3)
	assert.Equal(t, "Boss (0)", msg.Fields[0].Name)
	assert.Equal(t, "Vacant", msg.Fields[0].Value)
	assert.Equal(t, "Member (1)", msg.Fields[2].Name)
}

func TestRenderSkipsBotsAndUnranked(t *testing.T) {
	bot := member("u-bot", "role-member")
	bot.User.Bot = true
	members := []*discordgo.Member{
		bot,
		member("u-pending"), // no ranked role yet
		member("u1", "role-member"),
	}

	msg := Render(members, hierarchy)
	assert.Contains(t, msg.Description, "1")
	assert.Equal(t, "Member (1)", msg.Fields[2].Name)
}

func TestRenderCapsLongRanks(t *testing.T) {
	var members []*discordgo.Member
	for i := 0; i < maxListed+5; i++ {
		members = append(members, member(fmt.Sprintf("u%d", i), "role-member"))
	}

	msg := Render(members, hierarchy)
	field := msg.Fields[2]
	assert.Equal(t, fmt.Sprintf("Member (%d)", maxListed+5), field.Name)
	assert.Contains(t, field.Value, "+5 more")
	assert.Equal(t, maxListed, strings.Count(field.Value, "<@"))
	// Discord rejects field values past 1024 characters.
	assert.LessOrEqual(t, len(field.Value), 1024)
}
