package sanction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/model"
)

func TestRemoveSelectCapsOptionText(t *testing.T) {
	records := []model.SanctionRecord{
		{ID: 1, SubjectLabel: "John Doe", Reason: "short reason"},
		{ID: 2, SubjectLabel: strings.Repeat("N", 120), Reason: strings.Repeat("because ", 40)},
	}

	sel := removeSelect(records)
	require.Len(t, sel.Options, 2)
	for _, opt := range sel.Options {
		assert.LessOrEqual(t, len([]rune(opt.Label)), 100)
		assert.LessOrEqual(t, len([]rune(opt.Description)), 100)
	}
	assert.Equal(t, "John Doe (ID 1)", sel.Options[0].Label)
	assert.Equal(t, "short reason", sel.Options[0].Description)
	assert.Equal(t, "2", sel.Options[1].Value)
}

func TestPolicyExpiry(t *testing.T) {
	permanent := policyExpiry(model.KindPolicy{Kind: model.KindSanctionTerminal})
	assert.Nil(t, permanent)

	timed := policyExpiry(model.KindPolicy{Kind: model.KindSanctionMinor, Days: 7})
	require.NotNil(t, timed)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *timed, time.Minute)
}
