package tickets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Init(":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a distinct database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func sampleTicket(ownerID, channelID string) *model.Ticket {
	return &model.Ticket{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		OwnerID:   ownerID,
		Type:      "support",
		Reason:    "need help",
		CreatedAt: time.Now().UTC(),
	}
}

func TestTicketLifecycle(t *testing.T) {
	store := newTestStore(t)
	ticket := sampleTicket("user-1", "chan-1")
	require.NoError(t, store.Insert(ticket))

	open, err := store.HasOpenTicket("user-1")
	require.NoError(t, err)
	assert.True(t, open)

	got, err := store.GetOpenByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	require.NoError(t, store.Close(ticket.ID, "staff-1", `[]`, time.Now().UTC()))

	open, err = store.HasOpenTicket("user-1")
	require.NoError(t, err)
	assert.False(t, open)
	_, err = store.GetOpenByChannel("chan-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Closing twice is rejected.
	assert.ErrorIs(t, store.Close(ticket.ID, "staff-1", `[]`, time.Now().UTC()), ErrNotFound)
}

func TestGetOpenByChannelNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetOpenByChannel("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
