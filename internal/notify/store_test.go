package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/idgen"
)

type recordingSink struct {
	mu      sync.Mutex
	updates []model.InboxUpdate
}

func (r *recordingSink) InboxChanged(_ context.Context, update model.InboxUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *recordingSink) last() (model.InboxUpdate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return model.InboxUpdate{}, false
	}
	return r.updates[len(r.updates)-1], true
}

func newTestStore(t *testing.T) (*Store, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	return NewStore(idgen.New(), sink, slog.Default()), sink
}

func upcomingDraft(movieID int64, days int) model.Notification {
	return model.Notification{
		MovieID:   movieID,
		Title:     "Dune Part Three",
		Message:   fmt.Sprintf("releases in %d days", days),
		Kind:      model.KindUpcomingRelease,
		DaysUntil: model.Days(days),
	}
}

func TestAddForUserAssignsIdentity(t *testing.T) {
	store, sink := newTestStore(t)

	created := store.AddForUser(context.Background(), upcomingDraft(1, 7), "alice")
	require.True(t, created)

	inbox := store.Inbox("alice")
	require.Len(t, inbox, 1)
	assert.NotEmpty(t, inbox[0].ID)
	assert.False(t, inbox[0].CreatedAt.IsZero())
	assert.False(t, inbox[0].Read)
	assert.Equal(t, "alice", inbox[0].Username)

	update, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, "alice", update.Username)
	assert.Equal(t, 1, update.UnreadCount)
	assert.Equal(t, 1, update.TotalCount)
	require.NotNil(t, update.Notification)
	assert.Equal(t, inbox[0].ID, update.Notification.ID)
}

func TestAddForUserDeduplicates(t *testing.T) {
	store, sink := newTestStore(t)
	ctx := context.Background()

	require.True(t, store.AddForUser(ctx, upcomingDraft(1, 7), "alice"))
	assert.False(t, store.AddForUser(ctx, upcomingDraft(1, 7), "alice"),
		"same movie, kind and day count must be a no-op")
	assert.Equal(t, 1, store.TotalCount("alice"))

	// A different day count for the same movie is a distinct upcoming record.
	assert.True(t, store.AddForUser(ctx, upcomingDraft(1, 3), "alice"))
	assert.Equal(t, 2, store.TotalCount("alice"))

	// Same movie for a different user files independently.
	assert.True(t, store.AddForUser(ctx, upcomingDraft(1, 7), "bob"))

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.updates, 3, "duplicates must not signal the push pipeline")
}

func TestFutureReleaseDedupIgnoresDayCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	draft := model.Notification{
		MovieID:   9,
		Title:     "Avatar 4",
		Kind:      model.KindFutureRelease,
		DaysUntil: model.Days(30),
	}
	require.True(t, store.AddForUser(ctx, draft, "alice"))

	// The daily pass recomputes the count; the record must not duplicate.
	draft.DaysUntil = model.Days(29)
	assert.False(t, store.AddForUser(ctx, draft, "alice"))
	assert.Equal(t, 1, store.TotalCount("alice"))
}

func TestInboxCapsAndOrdering(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	for i := range 250 {
		store.AddForUser(ctx, upcomingDraft(int64(i), 7), "alice")
	}

	assert.Equal(t, 200, store.TotalCount("alice"), "oldest records evict past the retention cap")

	inbox := store.Inbox("alice")
	require.Len(t, inbox, 100, "reads cap at the most recent hundred")
	assert.Equal(t, int64(249), inbox[0].MovieID, "newest first")
	for i := 1; i < len(inbox); i++ {
		assert.False(t, inbox[i].CreatedAt.After(inbox[i-1].CreatedAt))
	}
}

func TestMarkReadAndCounts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.AddForUser(ctx, upcomingDraft(1, 7), "alice")
	store.AddForUser(ctx, upcomingDraft(2, 7), "alice")
	require.Equal(t, 2, store.UnreadCount("alice"))

	id := store.Inbox("alice")[0].ID
	store.MarkRead(id, "alice")
	assert.Equal(t, 1, store.UnreadCount("alice"))

	// Marking again or marking an unknown id changes nothing.
	store.MarkRead(id, "alice")
	store.MarkRead("missing", "alice")
	assert.Equal(t, 1, store.UnreadCount("alice"))
	assert.Equal(t, 2, store.TotalCount("alice"))
}

func TestDeleteOne(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.AddForUser(ctx, upcomingDraft(1, 7), "alice")
	store.AddForUser(ctx, upcomingDraft(2, 7), "alice")
	store.AddForUser(ctx, upcomingDraft(1, 7), "bob")

	id := store.Inbox("alice")[1].ID
	assert.True(t, store.DeleteOne(id, "alice"))
	assert.Equal(t, 1, store.TotalCount("alice"))

	assert.False(t, store.DeleteOne(id, "alice"), "second delete finds nothing")
	assert.False(t, store.DeleteOne(id, "bob"), "ids never cross inboxes")
	assert.Equal(t, 1, store.TotalCount("bob"))
}

func TestClearAll(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.AddForUser(ctx, upcomingDraft(1, 7), "alice")
	store.AddForUser(ctx, upcomingDraft(1, 7), "bob")

	store.ClearAll("alice")
	assert.Equal(t, 0, store.TotalCount("alice"))
	assert.Empty(t, store.Inbox("alice"))
	assert.Equal(t, 1, store.TotalCount("bob"), "clearing one user leaves others intact")

	// Clearing an unknown user is harmless.
	store.ClearAll("carol")
	assert.Equal(t, 0, store.TotalCount("carol"))
}

func TestLegacyAccessors(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.AddForUser(ctx, upcomingDraft(1, 7), "alice")
	store.AddForUser(ctx, upcomingDraft(2, 7), "bob")
	id := store.Inbox("bob")[0].ID
	store.MarkRead(id, "bob")

	assert.Len(t, store.AllNotifications(), 2)
	assert.Equal(t, 1, store.TotalUnread())
}

func TestConcurrentAdds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				store.AddForUser(ctx, upcomingDraft(int64(g*1000+i), 7), "alice")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, store.TotalCount("alice"))
	assert.Len(t, store.Inbox("alice"), 100)
}
