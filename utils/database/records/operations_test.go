package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/lifecycle"
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

func sampleRecord(subjectID string, kind model.RecordKind, expiresAt *time.Time) *model.SanctionRecord {
	return &model.SanctionRecord{
		SubjectID:    subjectID,
		SubjectLabel: "John Doe",
		Kind:         kind,
		RoleID:       "role-1",
		Reason:       "testing",
		IssuerID:     "staff-1",
		GuildID:      "guild-1",
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    expiresAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	expires := time.Now().UTC().Add(time.Hour)

	id, err := store.Create(sampleRecord("user-1", model.KindAbsence, &expires))
	require.NoError(t, err)
	require.NotZero(t, id)

	rec, err := store.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.SubjectID)
	assert.Equal(t, model.KindAbsence, rec.Kind)
	require.NotNil(t, rec.ExpiresAt)
	assert.WithinDuration(t, expires, *rec.ExpiresAt, time.Second)
}

func TestGetByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetByID(42)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestSingleActiveAbsencePerSubject(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	require.NoError(t, err)

	_, err = store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyActive)

	// Other subjects and other kinds are unaffected.
	_, err = store.Create(sampleRecord("user-2", model.KindAbsence, nil))
	assert.NoError(t, err)
	_, err = store.Create(sampleRecord("user-1", model.KindSanctionMinor, nil))
	assert.NoError(t, err)
}

func TestSingleActiveBlacklistPerSubject(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(sampleRecord("user-1", model.KindBlacklist, nil))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-1", model.KindBlacklist, nil))
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyActive)
}

func TestSanctionsAllowMultiplePerSubject(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(sampleRecord("user-1", model.KindSanctionMinor, nil))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-1", model.KindSanctionModerate, nil))
	assert.NoError(t, err)
}

func TestDeleteClaimsOnce(t *testing.T) {
	store := newTestStore(t)
	id, err := store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))
	assert.ErrorIs(t, store.Delete(id), lifecycle.ErrNotFound)

	// The slot frees up for a new record.
	_, err = store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	assert.NoError(t, err)
}

func TestFindExpired(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	dueID, err := store.Create(sampleRecord("user-1", model.KindAbsence, &past))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-2", model.KindAbsence, &future))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-3", model.KindSanctionMinor, &past))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-4", model.KindSanctionTerminal, nil)) // never expires
	require.NoError(t, err)

	due, err := store.FindExpired(now, model.KindAbsence)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, dueID, due[0].ID)

	due, err = store.FindExpired(now, model.SanctionKinds()...)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "user-3", due[0].SubjectID)

	due, err = store.FindExpired(now)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestDeleteBySubject(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(sampleRecord("user-1", model.KindSanctionMinor, nil))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	require.NoError(t, err)

	require.NoError(t, store.DeleteBySubject("user-1", model.KindSanctionMinor))

	_, err = store.FindBySubject("user-1", model.KindSanctionMinor)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
	// Other kinds for the same subject are untouched.
	_, err = store.FindBySubject("user-1", model.KindAbsence)
	assert.NoError(t, err)
}

func TestFindBySubject(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	require.NoError(t, err)

	rec, err := store.FindBySubject("user-1", model.KindAbsence)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.SubjectID)

	_, err = store.FindBySubject("user-1", model.KindBlacklist)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestSetRefs(t *testing.T) {
	store := newTestStore(t)
	id, err := store.Create(sampleRecord("user-1", model.KindAbsence, nil))
	require.NoError(t, err)

	require.NoError(t, store.SetPanelRef(id, "chan-1", "msg-1"))
	require.NoError(t, store.SetAuditRef(id, "chan-2", "msg-2"))

	rec, err := store.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", rec.PanelMessageID)
	assert.Equal(t, "chan-2", rec.AuditChannelID)

	assert.ErrorIs(t, store.SetPanelRef(999, "c", "m"), lifecycle.ErrNotFound)
}

func TestListByKindOrdersByCreation(t *testing.T) {
	store := newTestStore(t)

	first := sampleRecord("user-1", model.KindBlacklist, nil)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	_, err := store.Create(first)
	require.NoError(t, err)

	second := sampleRecord("user-2", model.KindBlacklist, nil)
	second.CreatedAt = time.Now().UTC()
	_, err = store.Create(second)
	require.NoError(t, err)

	recs, err := store.ListByKind(model.KindBlacklist)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "user-1", recs[0].SubjectID)
	assert.Equal(t, "user-2", recs[1].SubjectID)
}

func TestListSanctions(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create(sampleRecord("user-1", model.KindSanctionMinor, nil))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-2", model.KindSanctionTerminal, nil))
	require.NoError(t, err)
	_, err = store.Create(sampleRecord("user-3", model.KindAbsence, nil))
	require.NoError(t, err)

	recs, err := store.ListSanctions()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
