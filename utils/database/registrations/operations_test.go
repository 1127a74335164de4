package registrations

import (
	"testing"
	"time"

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

func samplePending(userID string) *model.PendingRegistration {
	return &model.PendingRegistration{
		UserID:      userID,
		Name:        "John Doe",
		RG:          "1234",
		Phone:       "555000111",
		Recruiter:   "Jane",
		SubmittedAt: time.Now().UTC(),
	}
}

func TestPendingLifecycle(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.InsertPending(samplePending("user-1")))
	assert.ErrorIs(t, store.InsertPending(samplePending("user-1")), ErrAlreadyPending)

	require.NoError(t, store.SetPendingMessage("user-1", "msg-1"))

	p, err := store.GetPendingByUser("user-1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", p.Name)
	assert.Equal(t, "msg-1", p.MessageID)

	require.NoError(t, store.DeletePending("user-1"))
	assert.ErrorIs(t, store.DeletePending("user-1"), ErrNotFound)
	_, err = store.GetPendingByUser("user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Denied or approved members can register again later.
	assert.NoError(t, store.InsertPending(samplePending("user-1")))
}

func TestMemberProfiles(t *testing.T) {
	store := newTestStore(t)

	id, err := store.InsertMember(&model.MemberProfile{
		UserID:       "user-1",
		Name:         "John Doe",
		RG:           "1234",
		RoleID:       "role-member",
		RegisteredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	m, err := store.GetMemberByUser("user-1")
	require.NoError(t, err)
	assert.Equal(t, "role-member", m.RoleID)

	_, err = store.GetMemberByUser("user-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMembersBefore(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	_, err := store.InsertMember(&model.MemberProfile{
		UserID: "old", Name: "Old", RG: "1", RoleID: "r", RegisteredAt: now.AddDate(0, 0, -40),
	})
	require.NoError(t, err)
	_, err = store.InsertMember(&model.MemberProfile{
		UserID: "fresh", Name: "Fresh", RG: "2", RoleID: "r", RegisteredAt: now,
	})
	require.NoError(t, err)

	removed, err := store.DeleteMembersBefore(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = store.GetMemberByUser("old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetMemberByUser("fresh")
	assert.NoError(t, err)
}
