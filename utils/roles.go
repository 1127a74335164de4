package utils

import (
	"strings"

	"orgbot/model"
)

// HighestRankedRole returns the highest-positioned entry of the hierarchy
// table that the member holds, or nil when none match. Rank is explicit in
// the table (lower rank = higher position), never inferred from Discord's
// own role ordering.
func HighestRankedRole(memberRoleIDs []string, table []model.RankedRole) *model.RankedRole {
	held := make(map[string]bool, len(memberRoleIDs))
	for _, id := range memberRoleIDs {
		held[id] = true
	}
	var best *model.RankedRole
	for i := range table {
		if !held[table[i].ID] {
			continue
		}
		if best == nil || table[i].Rank < best.Rank {
			best = &table[i]
		}
	}
	return best
}

// RankedRoleIDs returns every role ID in the hierarchy table.
func RankedRoleIDs(table []model.RankedRole) []string {
	ids := make([]string, 0, len(table))
	for _, r := range table {
		ids = append(ids, r.ID)
	}
	return ids
}

// ExtractUserID accepts either a raw snowflake or a <@…>/<@!…> mention and
// returns the bare ID, or "" when the input is neither.
func ExtractUserID(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
		s = strings.TrimPrefix(s, "!")
	}
	if s == "" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}

// HasRole reports whether the role list contains the given ID.
func HasRole(memberRoleIDs []string, roleID string) bool {
	for _, id := range memberRoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
