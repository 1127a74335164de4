package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/model"
)

var hierarchy = []model.RankedRole{
	{ID: "role-leader", Rank: 1, Name: "Leader"},
	{ID: "role-manager", Rank: 2, Name: "Manager"},
	{ID: "role-member", Rank: 3, Name: "Member"},
}

func TestHighestRankedRole(t *testing.T) {
	got := HighestRankedRole([]string{"role-member", "role-manager", "unrelated"}, hierarchy)
	require.NotNil(t, got)
	assert.Equal(t, "Manager", got.Name)
}

func TestHighestRankedRoleNoMatch(t *testing.T) {
	assert.Nil(t, HighestRankedRole([]string{"unrelated"}, hierarchy))
	assert.Nil(t, HighestRankedRole(nil, hierarchy))
}

func TestExtractUserID(t *testing.T) {
	assert.Equal(t, "123456789012345678", ExtractUserID("123456789012345678"))
	assert.Equal(t, "123456789012345678", ExtractUserID("<@123456789012345678>"))
	assert.Equal(t, "123456789012345678", ExtractUserID("<@!123456789012345678>"))
	assert.Equal(t, "123456789012345678", ExtractUserID(" 123456789012345678 "))

	assert.Empty(t, ExtractUserID("john"))
	assert.Empty(t, ExtractUserID("<@abc>"))
	assert.Empty(t, ExtractUserID(""))
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole([]string{"a", "b"}, "b"))
	assert.False(t, HasRole([]string{"a", "b"}, "c"))
	assert.False(t, HasRole(nil, "a"))
}
