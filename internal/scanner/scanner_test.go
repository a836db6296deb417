package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

type fakeCatalog struct {
	mu       sync.Mutex
	upcoming []model.Release
	future   []model.Release
	today    []model.Release
	users    []string

	err     error
	pingErr error
}

func (f *fakeCatalog) UpcomingReleases(_ context.Context, _ time.Duration) ([]model.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upcoming, f.err
}

func (f *fakeCatalog) FutureReleases(context.Context) ([]model.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.future, f.err
}

func (f *fakeCatalog) TodayReleases(context.Context) ([]model.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.today, f.err
}

func (f *fakeCatalog) Usernames(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, f.err
}

func (f *fakeCatalog) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeCatalog) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.pingErr = err
	f.mu.Unlock()
}

func (f *fakeCatalog) heal() {
	f.mu.Lock()
	f.err = nil
	f.pingErr = nil
	f.mu.Unlock()
}

type fakeInbox struct {
	mu     sync.Mutex
	added  []model.Notification
	byUser map[string]map[string]bool
}

func newFakeInbox() *fakeInbox {
	return &fakeInbox{byUser: make(map[string]map[string]bool)}
}

func (f *fakeInbox) AddForUser(_ context.Context, draft model.Notification, username string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := f.byUser[username]
	if keys == nil {
		keys = make(map[string]bool)
		f.byUser[username] = keys
	}
	if keys[draft.DedupKey()] {
		return false
	}
	keys[draft.DedupKey()] = true
	draft.Username = username
	f.added = append(f.added, draft)
	return true
}

func (f *fakeInbox) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.added)
}

func (f *fakeInbox) forUser(username string) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.added {
		if n.Username == username {
			out = append(out, n)
		}
	}
	return out
}

func newTestScanner(catalog Catalog, inbox Inbox) *Scanner {
	guard := NewGuard(50*time.Millisecond, 0, slog.Default())
	return New(catalog, inbox, guard, Config{
		UpcomingSpec: "0 * * * *",
		DailySpec:    "0 9 * * *",
		HealthSpec:   "*/5 * * * *",
	}, slog.Default())
}

func releaseIn(now time.Time, days int) model.Release {
	return model.Release{
		MovieID:     int64(days),
		Title:       "Blade Runner 2099",
		ReleaseDate: now.Add(time.Duration(days) * 24 * time.Hour),
	}
}

func TestCheckUpcomingReleasesTriggerDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		upcoming: []model.Release{
			releaseIn(now, 7),
			releaseIn(now, 5),
			releaseIn(now, 3),
			releaseIn(now, 1),
		},
		users: []string{"alice", "bob"},
	}
	inbox := newFakeInbox()
	s := newTestScanner(catalog, inbox).WithClock(func() time.Time { return now })

	require.NoError(t, s.CheckUpcomingReleases(context.Background()))

	// 7, 3 and 1 days out notify; 5 days out does not. Two users each.
	assert.Equal(t, 6, inbox.count())
	for _, n := range inbox.forUser("alice") {
		assert.Equal(t, model.KindUpcomingRelease, n.Kind)
		require.NotNil(t, n.DaysUntil)
		assert.Contains(t, []int{7, 3, 1}, *n.DaysUntil)
	}
}

func TestCheckUpcomingReleasesSingularDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		upcoming: []model.Release{releaseIn(now, 1)},
		users:    []string{"alice"},
	}
	inbox := newFakeInbox()
	s := newTestScanner(catalog, inbox).WithClock(func() time.Time { return now })

	require.NoError(t, s.CheckUpcomingReleases(context.Background()))

	added := inbox.forUser("alice")
	require.Len(t, added, 1)
	assert.Contains(t, added[0].Message, "1 day!")
}

func TestCheckTodayReleases(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		today: []model.Release{{MovieID: 42, Title: "The Long Dark", ReleaseDate: now}},
		users: []string{"alice"},
	}
	inbox := newFakeInbox()
	s := newTestScanner(catalog, inbox).WithClock(func() time.Time { return now })

	require.NoError(t, s.CheckTodayReleases(context.Background()))

	added := inbox.forUser("alice")
	require.Len(t, added, 1)
	assert.Equal(t, model.KindTodayRelease, added[0].Kind)
	assert.Nil(t, added[0].DaysUntil)
	assert.Contains(t, added[0].Message, "now released")
}

func TestCheckAllFutureReleasesRerunIsStable(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		future: []model.Release{releaseIn(now, 12), releaseIn(now, 40)},
		users:  []string{"alice"},
	}
	inbox := newFakeInbox()
	s := newTestScanner(catalog, inbox).WithClock(func() time.Time { return now })

	require.NoError(t, s.CheckAllFutureReleases(context.Background()))
	require.Equal(t, 2, inbox.count())

	// The next day the day counts shrink but the records must not duplicate.
	later := now.Add(24 * time.Hour)
	s.WithClock(func() time.Time { return later })
	require.NoError(t, s.CheckAllFutureReleases(context.Background()))
	assert.Equal(t, 2, inbox.count())
}

func TestSendAllFutureTargetsOneUser(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		future: []model.Release{releaseIn(now, 12), releaseIn(now, 40)},
		users:  []string{"alice", "bob"},
	}
	inbox := newFakeInbox()
	s := newTestScanner(catalog, inbox).WithClock(func() time.Time { return now })

	sent, err := s.SendAllFuture(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, inbox.forUser("alice"), 2)
	assert.Empty(t, inbox.forUser("bob"))
}

func TestOutageSkipsPassesUntilProbeRecovers(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		today: []model.Release{{MovieID: 1, Title: "Solaris", ReleaseDate: now}},
		users: []string{"alice"},
	}
	inbox := newFakeInbox()
	s := newTestScanner(catalog, inbox).WithClock(func() time.Time { return now })

	catalog.fail(errors.New("disk I/O error"))
	require.Error(t, s.CheckTodayReleases(context.Background()))
	assert.False(t, s.guard.Available())

	// While the breaker is open, passes are skipped without touching the
	// catalog and report no error.
	require.NoError(t, s.CheckTodayReleases(context.Background()))
	assert.Zero(t, inbox.count())

	catalog.heal()
	// The breaker re-admits a probe only after its cooldown.
	require.Eventually(t, func() bool {
		return s.ProbeHealth(context.Background()) == nil
	}, time.Second, 20*time.Millisecond)
	assert.True(t, s.guard.Available())

	require.NoError(t, s.CheckTodayReleases(context.Background()))
	assert.Equal(t, 1, inbox.count())
}

func TestStartRejectsBadSpec(t *testing.T) {
	catalog := &fakeCatalog{}
	s := New(catalog, newFakeInbox(), NewGuard(time.Minute, 0, slog.Default()), Config{
		UpcomingSpec: "not a cron spec",
		DailySpec:    "0 9 * * *",
		HealthSpec:   "*/5 * * * *",
	}, slog.Default())

	assert.Error(t, s.Start())
}
