// Package notify holds the in-process notification inbox authority.
//
// State is process-memory only and lost on restart; the delivery guarantee
// is replay-on-authenticate, not persistence.
package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/idgen"
)

const (
	// maxStored caps how many records a single inbox retains; oldest are
	// evicted first.
	maxStored = 200
	// maxReturned caps how many records a single read hands out,
	// most-recent first.
	maxReturned = 100
)

// Sink receives the owner's refreshed inbox state after a store-side
// mutation, for fan-out to that user's live connection.
type Sink interface {
	InboxChanged(ctx context.Context, update model.InboxUpdate)
}

// Store owns every user's inbox. All mutations go through its methods;
// callers never touch the maps directly.
type Store struct {
	mu      sync.RWMutex
	inboxes map[string][]*model.Notification

	ids  idgen.Generator
	now  func() time.Time
	sink Sink
	log  *slog.Logger
}

func NewStore(ids idgen.Generator, sink Sink, log *slog.Logger) *Store {
	return &Store{
		inboxes: make(map[string][]*model.Notification),
		ids:     ids,
		now:     time.Now,
		sink:    sink,
		log:     log,
	}
}

// WithClock overrides the store's time source. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// AddForUser files a notification draft into username's inbox. An equivalent
// record (same dedup key) is a no-op. On a real append the store assigns a
// fresh id and creation timestamp, evicts past the cap, and signals the push
// pipeline with the refreshed inbox. Reports whether a record was created.
func (s *Store) AddForUser(ctx context.Context, draft model.Notification, username string) bool {
	s.mu.Lock()

	inbox := s.inboxes[username]

	key := draft.DedupKey()
	for _, existing := range inbox {
		if existing.DedupKey() == key {
			s.mu.Unlock()
			return false
		}
	}

	n := draft
	n.ID = s.ids.NewID()
	n.CreatedAt = s.now()
	n.Read = false
	n.Username = username

	inbox = append(inbox, &n)
	if len(inbox) > maxStored {
		inbox = inbox[len(inbox)-maxStored:]
	}
	s.inboxes[username] = inbox

	snapshot := s.snapshotLocked(username)
	unread := s.unreadLocked(username)
	total := len(inbox)
	s.mu.Unlock()

	s.log.Debug("notification stored",
		"username", username,
		"movie_id", n.MovieID,
		"kind", n.Kind,
	)

	if s.sink != nil {
		s.sink.InboxChanged(ctx, model.InboxUpdate{
			Username:      username,
			Notification:  &n,
			Notifications: snapshot,
			UnreadCount:   unread,
			TotalCount:    total,
		})
	}
	return true
}

// Inbox returns up to 100 most-recent records for username, newest first.
// Unknown usernames yield an empty slice.
func (s *Store) Inbox(username string) []*model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(username)
}

func (s *Store) snapshotLocked(username string) []*model.Notification {
	inbox := s.inboxes[username]
	out := make([]*model.Notification, len(inbox))
	copy(out, inbox)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > maxReturned {
		out = out[:maxReturned]
	}
	return out
}

// UnreadCount reports how many of username's records are unread.
func (s *Store) UnreadCount(username string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadLocked(username)
}

func (s *Store) unreadLocked(username string) int {
	count := 0
	for _, n := range s.inboxes[username] {
		if !n.Read {
			count++
		}
	}
	return count
}

// TotalCount reports the stored inbox length for username.
func (s *Store) TotalCount(username string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inboxes[username])
}

// MarkRead flags the matching record as read. Absent records are a no-op.
func (s *Store) MarkRead(id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.inboxes[username] {
		if n.ID == id {
			n.Read = true
			return
		}
	}
}

// DeleteOne removes the matching record, reporting whether a removal
// occurred. Other users' inboxes are never touched.
func (s *Store) DeleteOne(id, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.inboxes[username]
	for i, n := range inbox {
		if n.ID == id {
			s.inboxes[username] = append(inbox[:i:i], inbox[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll empties username's inbox, creating the (empty) entry if absent.
func (s *Store) ClearAll(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxes[username] = []*model.Notification{}
}

// AllNotifications returns the most-recent 100 records across every user.
// Legacy accessor for non-per-user consumers.
func (s *Store) AllNotifications() []*model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*model.Notification
	for _, inbox := range s.inboxes {
		all = append(all, inbox...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > maxReturned {
		all = all[:maxReturned]
	}
	return all
}

// TotalUnread sums unread counts across every user. Legacy accessor.
func (s *Store) TotalUnread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for username := range s.inboxes {
		total += s.unreadLocked(username)
	}
	return total
}
