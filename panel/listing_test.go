package panel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/lifecycle"
	"orgbot/model"
)

type stubSource struct {
	records []model.SanctionRecord
}

func (s *stubSource) ListByKind(kind model.RecordKind) ([]model.SanctionRecord, error) {
	return s.records, nil
}

type stubPlatform struct {
	lifecycle.Platform

	sent       int
	edits      []string // message IDs edited
	editErr    map[string]error
	findID     string
	lastEdit   lifecycle.Message
	nextSendID string
}

func (p *stubPlatform) SendPanel(channelID string, msg lifecycle.Message) (string, error) {
	p.sent++
	if p.nextSendID == "" {
		p.nextSendID = "msg-new"
	}
	return p.nextSendID, nil
}

func (p *stubPlatform) EditPanel(channelID, messageID string, msg lifecycle.Message) error {
	if err, ok := p.editErr[messageID]; ok {
		return err
	}
	p.edits = append(p.edits, messageID)
	p.lastEdit = msg
	return nil
}

func (p *stubPlatform) FindPanel(channelID, title string) (string, error) {
	return p.findID, nil
}

func render(records []model.SanctionRecord) lifecycle.Message {
	return lifecycle.Message{
		Title:       "Blacklist",
		Description: fmt.Sprintf("%d entries", len(records)),
	}
}

func newBlacklistListing(source *stubSource, platform *stubPlatform) *Listing {
	return NewRecordListing(source, platform, model.KindBlacklist, "chan", "Blacklist", render)
}

func TestRefreshCreatesPanelWhenMissing(t *testing.T) {
	platform := &stubPlatform{}
	l := newBlacklistListing(&stubSource{}, platform)

	require.NoError(t, l.Refresh())
	assert.Equal(t, 1, platform.sent)

	// The created message is remembered and edited afterwards.
	require.NoError(t, l.Refresh())
	assert.Equal(t, 1, platform.sent)
	assert.Equal(t, []string{"msg-new"}, platform.edits)
}

func TestRefreshAdoptsExistingPanel(t *testing.T) {
	platform := &stubPlatform{findID: "msg-found"}
	l := newBlacklistListing(&stubSource{}, platform)

	require.NoError(t, l.Refresh())
	assert.Zero(t, platform.sent)
	assert.Equal(t, []string{"msg-found"}, platform.edits)
}

func TestRefreshRendersActiveSet(t *testing.T) {
	source := &stubSource{records: []model.SanctionRecord{
		{ID: 1, SubjectLabel: "A"},
		{ID: 2, SubjectLabel: "B"},
	}}
	platform := &stubPlatform{findID: "msg-found"}
	l := newBlacklistListing(source, platform)

	require.NoError(t, l.Refresh())
	assert.Equal(t, "2 entries", platform.lastEdit.Description)
}

func TestRefreshRecreatesDeletedPanel(t *testing.T) {
	platform := &stubPlatform{findID: "msg-old"}
	l := newBlacklistListing(&stubSource{}, platform)
	require.NoError(t, l.Refresh())

	// The message disappears out-of-band; the next refresh self-heals.
	platform.editErr = map[string]error{"msg-old": fmt.Errorf("%w: deleted", lifecycle.ErrGone)}
	platform.findID = ""
	require.NoError(t, l.Refresh())
	assert.Equal(t, 1, platform.sent)
}

func TestRefreshPropagatesHardEditFailure(t *testing.T) {
	platform := &stubPlatform{findID: "msg-old"}
	l := newBlacklistListing(&stubSource{}, platform)
	require.NoError(t, l.Refresh())

	platform.editErr = map[string]error{"msg-old": errors.New("rate limited")}
	err := l.Refresh()
	require.Error(t, err)
	assert.Zero(t, platform.sent)
}

func TestRefreshAdoptionFailureDoesNotDuplicatePanel(t *testing.T) {
	// An existing message is found but the edit fails hard (not a deletion):
	// the refresh must surface the error instead of posting a second listing.
	platform := &stubPlatform{
		findID:  "msg-found",
		editErr: map[string]error{"msg-found": errors.New("rate limited")},
	}
	l := newBlacklistListing(&stubSource{}, platform)

	err := l.Refresh()
	require.Error(t, err)
	assert.Zero(t, platform.sent)

	// Once the edit succeeds the found message is adopted, still without a
	// second send.
	platform.editErr = nil
	require.NoError(t, l.Refresh())
	assert.Zero(t, platform.sent)
	assert.Equal(t, []string{"msg-found"}, platform.edits)
}

func TestFuncListingRefreshesFromContent(t *testing.T) {
	platform := &stubPlatform{findID: "msg-found"}
	entries := 1
	l := NewListing(platform, "roster", "chan", "Roster", func() (lifecycle.Message, error) {
		return lifecycle.Message{Title: "Roster", Description: fmt.Sprintf("%d entries", entries)}, nil
	})

	require.NoError(t, l.Refresh())
	assert.Equal(t, "1 entries", platform.lastEdit.Description)

	entries = 3
	require.NoError(t, l.Refresh())
	assert.Equal(t, "3 entries", platform.lastEdit.Description)
}

func TestFuncListingContentErrorAborts(t *testing.T) {
	platform := &stubPlatform{}
	l := NewListing(platform, "roster", "chan", "Roster", func() (lifecycle.Message, error) {
		return lifecycle.Message{}, errors.New("members unavailable")
	})

	require.Error(t, l.Refresh())
	assert.Zero(t, platform.sent)
}
