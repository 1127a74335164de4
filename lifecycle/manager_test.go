package lifecycle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbot/model"
)

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*model.SanctionRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, records: make(map[int64]*model.SanctionRecord)}
}

func (s *fakeStore) Create(rec *model.SanctionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Kind == model.KindAbsence || rec.Kind == model.KindBlacklist {
		for _, existing := range s.records {
			if existing.SubjectID == rec.SubjectID && existing.Kind == rec.Kind {
				return 0, ErrAlreadyActive
			}
		}
	}
	id := s.nextID
	s.nextID++
	stored := *rec
	stored.ID = id
	s.records[id] = &stored
	return id, nil
}

func (s *fakeStore) GetByID(id int64) (*model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) FindBySubject(subjectID string, kind model.RecordKind) (*model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.SubjectID == subjectID && rec.Kind == kind {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) FindExpired(now time.Time, kinds ...model.RecordKind) ([]model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SanctionRecord
	for _, rec := range s.records {
		if !rec.Expired(now) {
			continue
		}
		if len(kinds) > 0 && !containsKind(kinds, rec.Kind) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *fakeStore) ListByKind(kind model.RecordKind) ([]model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SanctionRecord
	for _, rec := range s.records {
		if rec.Kind == kind {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *fakeStore) SetPanelRef(id int64, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.PanelChannelID, rec.PanelMessageID = channelID, messageID
	return nil
}

func (s *fakeStore) SetAuditRef(id int64, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.AuditChannelID, rec.AuditMessageID = channelID, messageID
	return nil
}

func (s *fakeStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func containsKind(kinds []model.RecordKind, k model.RecordKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

type fakePlatform struct {
	mu       sync.Mutex
	grants   []string
	revokes  []string
	panels   []Message
	edits    []Message
	appends  []Field
	audits   []string
	messages int
}

func (p *fakePlatform) GrantRole(guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants = append(p.grants, userID+"/"+roleID)
	return nil
}

func (p *fakePlatform) RevokeRole(guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revokes = append(p.revokes, userID+"/"+roleID)
	return nil
}

func (p *fakePlatform) SendPanel(channelID string, msg Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panels = append(p.panels, msg)
	p.messages++
	return "msg-panel", nil
}

func (p *fakePlatform) EditPanel(channelID, messageID string, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, msg)
	return nil
}

func (p *fakePlatform) AppendPanelField(channelID, messageID string, field Field, color int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appends = append(p.appends, field)
	return nil
}

func (p *fakePlatform) DeleteMessage(channelID, messageID string) error { return nil }

func (p *fakePlatform) SendAudit(channelID, content string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audits = append(p.audits, content)
	return "msg-audit", nil
}

func (p *fakePlatform) FindPanel(channelID, title string) (string, error) { return "", nil }

func testPolicies() map[model.RecordKind]Policy {
	return map[model.RecordKind]Policy{
		model.KindAbsence: {
			Name:           "Absence",
			RoleID:         "role-absent",
			PanelChannelID: "chan-records",
			AuditChannelID: "chan-audit",
		},
		model.KindSanctionMinor: {
			Name:           "Minor Sanction",
			RoleID:         "role-minor",
			Days:           7,
			PanelChannelID: "chan-sanctions",
			AuditChannelID: "chan-audit",
		},
		model.KindSanctionTerminal: {
			Name:           "Terminal Sanction",
			RoleID:         "role-terminal",
			PanelChannelID: "chan-sanctions",
			AuditChannelID: "chan-audit",
		},
		model.KindBlacklist: {
			Name:           "Blacklist",
			AuditChannelID: "chan-audit",
		},
	}
}

func newTestManager() (*Manager, *fakeStore, *fakePlatform) {
	store := newFakeStore()
	platform := &fakePlatform{}
	m := NewManager(store, platform, "guild-1", testPolicies())
	return m, store, platform
}

func TestCreateRequiresReason(t *testing.T) {
	m, _, _ := newTestManager()
	_, err := m.Create(CreateRequest{Kind: model.KindSanctionMinor, SubjectID: "user-1"})
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestCreateBlacklistWithoutReason(t *testing.T) {
	m, _, _ := newTestManager()
	rec, err := m.Create(CreateRequest{Kind: model.KindBlacklist, SubjectID: "user-1", SubjectLabel: "John"})
	require.NoError(t, err)
	assert.Empty(t, rec.Reason)
}

func TestCreateUnknownKind(t *testing.T) {
	m, _, _ := newTestManager()
	_, err := m.Create(CreateRequest{Kind: "nonsense", SubjectID: "user-1", Reason: "r"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCreateAppliesPolicyDuration(t *testing.T) {
	m, _, _ := newTestManager()
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	rec, err := m.Create(CreateRequest{
		Kind:      model.KindSanctionMinor,
		SubjectID: "user-1",
		Reason:    "spam",
		IssuerID:  "staff-1",
	})
	require.NoError(t, err)
	require.NotNil(t, rec.ExpiresAt)
	assert.Equal(t, fixed.Add(7*24*time.Hour), *rec.ExpiresAt)
}

func TestCreateTerminalNeverExpires(t *testing.T) {
	m, _, _ := newTestManager()
	rec, err := m.Create(CreateRequest{
		Kind:      model.KindSanctionTerminal,
		SubjectID: "user-1",
		Reason:    "severe breach",
		IssuerID:  "staff-1",
	})
	require.NoError(t, err)
	assert.Nil(t, rec.ExpiresAt)
}

func TestCreateGrantsRoleAndPublishes(t *testing.T) {
	m, store, platform := newTestManager()
	ret := time.Now().Add(48 * time.Hour)
	panel := Message{Title: "Absence Record"}

	rec, err := m.Create(CreateRequest{
		Kind:      model.KindAbsence,
		SubjectID: "user-1",
		Reason:    "travel",
		IssuerID:  "user-1",
		ExpiresAt: &ret,
		Panel:     &panel,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1/role-absent"}, platform.grants)
	require.Len(t, platform.panels, 1)
	assert.Contains(t, platform.panels[0].Footer, "Record ID:")
	require.Len(t, platform.audits, 1)

	stored, err := store.GetByID(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "chan-records", stored.PanelChannelID)
	assert.Equal(t, "msg-panel", stored.PanelMessageID)
}

func TestCreateRejectsSecondActiveAbsence(t *testing.T) {
	m, _, _ := newTestManager()
	ret := time.Now().Add(time.Hour)

	_, err := m.Create(CreateRequest{Kind: model.KindAbsence, SubjectID: "user-1", Reason: "a", ExpiresAt: &ret})
	require.NoError(t, err)

	_, err = m.Create(CreateRequest{Kind: model.KindAbsence, SubjectID: "user-1", Reason: "b", ExpiresAt: &ret})
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestExpireRevokesRoleAndDeletes(t *testing.T) {
	m, store, platform := newTestManager()
	rec, err := m.Create(CreateRequest{Kind: model.KindSanctionMinor, SubjectID: "user-1", Reason: "spam"})
	require.NoError(t, err)

	require.NoError(t, m.Expire(rec.ID, model.TriggerManual))

	assert.Equal(t, []string{"user-1/role-minor"}, platform.revokes)
	_, err = store.GetByID(rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpireIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager()
	rec, err := m.Create(CreateRequest{Kind: model.KindSanctionMinor, SubjectID: "user-1", Reason: "spam"})
	require.NoError(t, err)

	require.NoError(t, m.Expire(rec.ID, model.TriggerManual))
	assert.ErrorIs(t, m.Expire(rec.ID, model.TriggerManual), ErrNotFound)
}

// A timeout sweep racing an early return must produce exactly one terminal
// transition: one role revocation, one audit entry.
func TestConcurrentExpiryRunsOnce(t *testing.T) {
	m, _, platform := newTestManager()
	ret := time.Now().Add(time.Hour)
	panel := Message{Title: "Absence Record"}
	rec, err := m.Create(CreateRequest{Kind: model.KindAbsence, SubjectID: "user-1", Reason: "travel", ExpiresAt: &ret, Panel: &panel})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, trigger := range []model.ExpiryTrigger{model.TriggerTimeout, model.TriggerEarlyReturn} {
		wg.Add(1)
		go func(tr model.ExpiryTrigger) {
			defer wg.Done()
			results <- m.Expire(rec.ID, tr)
		}(trigger)
	}
	wg.Wait()
	close(results)

	var successes, notFound int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == ErrNotFound:
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, notFound)
	assert.Len(t, platform.revokes, 1)
	// One create entry plus exactly one expiry entry.
	assert.Len(t, platform.audits, 2)
}

func TestExpireAbsenceAppendsBanner(t *testing.T) {
	m, _, platform := newTestManager()
	ret := time.Now().Add(time.Hour)
	panel := Message{Title: "Absence Record"}
	rec, err := m.Create(CreateRequest{Kind: model.KindAbsence, SubjectID: "user-1", Reason: "travel", ExpiresAt: &ret, Panel: &panel})
	require.NoError(t, err)

	require.NoError(t, m.Expire(rec.ID, model.TriggerEarlyReturn))

	require.Len(t, platform.appends, 1)
	assert.Equal(t, "Early Return:", platform.appends[0].Name)
	assert.Empty(t, platform.edits)
}

func TestExpireSanctionEditsPanel(t *testing.T) {
	m, _, platform := newTestManager()
	panel := Message{Title: "Sanction Applied"}
	rec, err := m.Create(CreateRequest{Kind: model.KindSanctionMinor, SubjectID: "user-1", Reason: "spam", Panel: &panel})
	require.NoError(t, err)

	require.NoError(t, m.Expire(rec.ID, model.TriggerTimeout))

	require.Len(t, platform.edits, 1)
	assert.Equal(t, "Sanction Expired Automatically", platform.edits[0].Title)
	assert.Empty(t, platform.appends)
}

type countingRefresher struct {
	mu    sync.Mutex
	count int
}

func (r *countingRefresher) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return nil
}

func TestListingRefreshedOnCreateAndExpire(t *testing.T) {
	m, _, _ := newTestManager()
	refresher := &countingRefresher{}
	m.SetRefresher(model.KindBlacklist, refresher)

	rec, err := m.Create(CreateRequest{Kind: model.KindBlacklist, SubjectID: "user-1", SubjectLabel: "John"})
	require.NoError(t, err)
	require.NoError(t, m.Expire(rec.ID, model.TriggerManual))

	assert.Equal(t, 2, refresher.count)
}

func TestExpireBySubject(t *testing.T) {
	m, _, _ := newTestManager()
	ret := time.Now().Add(time.Hour)
	_, err := m.Create(CreateRequest{Kind: model.KindAbsence, SubjectID: "user-1", Reason: "travel", ExpiresAt: &ret})
	require.NoError(t, err)

	require.NoError(t, m.ExpireBySubject("user-1", model.KindAbsence, model.TriggerEarlyReturn))
	assert.ErrorIs(t, m.ExpireBySubject("user-1", model.KindAbsence, model.TriggerEarlyReturn), ErrNotFound)
}
