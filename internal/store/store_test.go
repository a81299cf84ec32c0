package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/internal/client"
	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/models"
)

type recordingToaster struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *recordingToaster) Toast(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *recordingToaster) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

type fakeAutomationAPI struct {
	mu        sync.Mutex
	items     []models.Automation
	queries   []string
	statusErr error
	// release, when set, blocks SetAutomationStatus until closed.
	release chan struct{}
}

func (f *fakeAutomationAPI) ListAutomations(_ context.Context, p models.AutomationListParams) ([]models.Automation, *models.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, p.Search)
	return append([]models.Automation(nil), f.items...), models.NewPagination(1, 20, int64(len(f.items))), nil
}

func (f *fakeAutomationAPI) SetAutomationStatus(_ context.Context, id string, status models.AutomationStatus) (models.Automation, error) {
	if f.release != nil {
		<-f.release
	}
	if f.statusErr != nil {
		return models.Automation{}, f.statusErr
	}
	return models.Automation{ID: id, Status: status, Name: "from server"}, nil
}

func (f *fakeAutomationAPI) searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func loadedAutomationStore(t *testing.T, api *fakeAutomationAPI, toaster Toaster) *AutomationStore {
	t.Helper()
	s := NewAutomationStore(api, toaster)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestAutomationStore_ToggleIsOptimistic(t *testing.T) {
	api := &fakeAutomationAPI{
		items:   []models.Automation{{ID: "auto_1", Status: models.StatusActive}},
		release: make(chan struct{}),
	}
	s := loadedAutomationStore(t, api, &recordingToaster{})

	done := make(chan error)
	go func() { done <- s.Toggle(context.Background(), "auto_1") }()

	require.Eventually(t, func() bool {
		return s.Items()[0].Status == models.StatusInactive
	}, time.Second, 5*time.Millisecond, "status should flip before the server answers")

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, "from server", s.Items()[0].Name)
}

func TestAutomationStore_ToggleRollsBack(t *testing.T) {
	toaster := &recordingToaster{}
	api := &fakeAutomationAPI{
		items:     []models.Automation{{ID: "auto_1", Status: models.StatusPaused}},
		statusErr: errors.New("boom"),
	}
	s := loadedAutomationStore(t, api, toaster)

	err := s.Toggle(context.Background(), "auto_1")
	require.Error(t, err)
	assert.Equal(t, models.StatusPaused, s.Items()[0].Status)
	require.Len(t, toaster.all(), 1)
	assert.Equal(t, ToastDestructive, toaster.all()[0].Variant)
}

func TestAutomationStore_ToggleRejectsDraft(t *testing.T) {
	api := &fakeAutomationAPI{items: []models.Automation{{ID: "auto_1", Status: models.StatusDraft}}}
	s := loadedAutomationStore(t, api, &recordingToaster{})
	assert.Error(t, s.Toggle(context.Background(), "auto_1"))
	assert.Error(t, s.Toggle(context.Background(), "auto_missing"))
}

func TestAutomationStore_SearchIsDebounced(t *testing.T) {
	api := &fakeAutomationAPI{}
	s := NewAutomationStore(api, &recordingToaster{})
	s.search = NewDebouncer(30 * time.Millisecond)

	for _, q := range []string{"p", "pr", "pri", "price"} {
		s.SetSearch(context.Background(), q)
	}
	require.Eventually(t, func() bool { return len(api.searches()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"price"}, api.searches())
}

func TestDebouncer_Stop(t *testing.T) {
	var calls int32
	d := NewDebouncer(20 * time.Millisecond)
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

type fakeNotificationAPI struct {
	items []models.Notification
	err   error
}

func (f *fakeNotificationAPI) ListNotifications(context.Context, models.NotificationListParams) ([]models.Notification, *models.Pagination, error) {
	return append([]models.Notification(nil), f.items...), nil, nil
}

func (f *fakeNotificationAPI) MarkNotificationsRead(_ context.Context, ids []uint) (int64, error) {
	return int64(len(ids)), f.err
}

func (f *fakeNotificationAPI) MarkAllNotificationsRead(context.Context) (int64, error) {
	return 0, f.err
}

func TestNotificationStore_MarkReadRollsBack(t *testing.T) {
	api := &fakeNotificationAPI{items: []models.Notification{{ID: 1}, {ID: 2, Read: true}, {ID: 3}}}
	s := NewNotificationStore(api, &recordingToaster{})
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 2, s.Unread())

	require.NoError(t, s.MarkRead(context.Background(), []uint{1}))
	assert.Equal(t, 1, s.Unread())

	api.err = errors.New("offline")
	require.Error(t, s.MarkAllRead(context.Background()))
	assert.Equal(t, 1, s.Unread(), "only the items this call changed are restored")
	assert.True(t, s.Items()[1].Read)
}

func TestNotificationStore_ApplyMergesByID(t *testing.T) {
	s := NewNotificationStore(&fakeNotificationAPI{}, &recordingToaster{})
	now := time.Now()
	push := func(n models.Notification) bool {
		raw, _ := json.Marshal(n)
		return s.Apply(models.RealtimeEvent{Channel: models.ChannelNotifications, Type: "notification.created", Data: raw})
	}

	assert.True(t, push(models.Notification{ID: 1, Title: "old", CreatedAt: now.Add(-time.Minute)}))
	assert.True(t, push(models.Notification{ID: 2, Title: "new", CreatedAt: now}))
	assert.True(t, push(models.Notification{ID: 1, Title: "old", Read: true, CreatedAt: now.Add(-time.Minute)}))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(2), items[0].ID)
	assert.True(t, items[1].Read)
	assert.False(t, s.Apply(models.RealtimeEvent{Channel: models.ChannelVoiceDNAStatus}))
}

type fakeVoiceAPI struct {
	mu       sync.Mutex
	statuses []models.VoiceDNAStatus
	calls    int
}

func (f *fakeVoiceAPI) VoiceDNAStatus(_ context.Context, id string) (models.VoiceDNAProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.calls++
	return models.VoiceDNAProfile{ID: id, Status: f.statuses[i]}, nil
}

func TestVoiceDNAWatcher_PollsToTerminal(t *testing.T) {
	api := &fakeVoiceAPI{statuses: []models.VoiceDNAStatus{models.VoiceDNAQueued, models.VoiceDNAAnalyzing, models.VoiceDNAReady}}
	var seen []models.VoiceDNAStatus
	w := NewVoiceDNAWatcher(api, "vdna_1", func(p models.VoiceDNAProfile) { seen = append(seen, p.Status) })
	w.interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	w.Run(ctx)

	select {
	case <-w.Done():
	default:
		t.Fatal("watcher should be done")
	}
	assert.Equal(t, []models.VoiceDNAStatus{models.VoiceDNAAnalyzing, models.VoiceDNAReady}, seen)
}

func TestVoiceDNAWatcher_TerminalIsIdempotent(t *testing.T) {
	calls := 0
	w := NewVoiceDNAWatcher(&fakeVoiceAPI{}, "vdna_1", func(models.VoiceDNAProfile) { calls++ })

	raw, _ := json.Marshal(models.VoiceDNAProfile{ID: "vdna_1", Status: models.VoiceDNAReady})
	w.HandleEvent(models.RealtimeEvent{Channel: models.ChannelVoiceDNAStatus, Data: raw})
	w.HandleEvent(models.RealtimeEvent{Channel: models.ChannelVoiceDNAStatus, Data: raw})
	assert.False(t, w.Update(models.VoiceDNAProfile{ID: "vdna_1", Status: models.VoiceDNAFailed}))

	other, _ := json.Marshal(models.VoiceDNAProfile{ID: "vdna_2", Status: models.VoiceDNAFailed})
	w.HandleEvent(models.RealtimeEvent{Channel: models.ChannelVoiceDNAStatus, Data: other})

	assert.Equal(t, 1, calls)
	assert.Equal(t, models.VoiceDNAReady, w.Profile().Status)
}

func newSessionRepo(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := database.OpenSessionDB(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db)
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := newSessionRepo(t)

	s, err := repo.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated)

	user := models.User{ID: "usr_1", Email: "a@b.c", Name: "Ana"}
	require.NoError(t, repo.Save(Session{User: user, Authenticated: true}))
	s, err = repo.Load()
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
	assert.Equal(t, user, s.User)

	require.NoError(t, repo.Clear())
	s, err = repo.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated)
}

func TestSessionRepository_ExpiresAfterInactivity(t *testing.T) {
	repo := newSessionRepo(t)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return start }
	require.NoError(t, repo.Save(Session{User: models.User{ID: "usr_1"}, Authenticated: true}))

	repo.now = func() time.Time { return start.Add(29 * time.Minute) }
	require.NoError(t, repo.Touch())
	s, err := repo.Load()
	require.NoError(t, err)
	assert.True(t, s.Authenticated)

	repo.now = func() time.Time { return start.Add(29*time.Minute + SessionTimeout + time.Second) }
	s, err = repo.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated)
}

func TestAppState_UnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"missing or invalid bearer token"}}`))
	}))
	defer srv.Close()

	repo := newSessionRepo(t)
	require.NoError(t, repo.Save(Session{User: models.User{ID: "usr_1"}, Authenticated: true}))

	toaster := &recordingToaster{}
	app := NewAppState(client.New(srv.URL, "stale"), repo, toaster)

	_, err := app.Client.Me(context.Background())
	require.Error(t, err)

	_, err = app.RequireSession()
	assert.Error(t, err)
	require.Len(t, toaster.all(), 1)
	assert.Equal(t, "Signed out", toaster.all()[0].Title)
}

func TestAutomationStore_SetFilters(t *testing.T) {
	api := &fakeAutomationAPI{items: []models.Automation{{ID: "auto_1", Status: models.StatusActive}}}
	s := NewAutomationStore(api, &recordingToaster{})

	require.NoError(t, s.SetFilters(context.Background(), models.StatusActive, "price"))
	assert.Equal(t, []string{"price"}, api.searches())
	assert.Len(t, s.Items(), 1)
	assert.EqualValues(t, 1, s.Pagination().Total)
}
