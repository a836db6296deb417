package model

import (
	"fmt"
	"time"
)

// NotificationKind discriminates the variant of a release notification.
// DaysUntil is only meaningful for the upcoming/future kinds.
type NotificationKind string

const (
	KindTodayRelease    NotificationKind = "today_release"
	KindUpcomingRelease NotificationKind = "upcoming_release"
	KindFutureRelease   NotificationKind = "future_release"
)

// Notification is one deliverable release event owned by a single user.
// Records are immutable after creation except for the Read flag.
type Notification struct {
	ID          string           `json:"id"`
	MovieID     int64            `json:"movieId"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Kind        NotificationKind `json:"type"`
	DaysUntil   *int             `json:"daysUntil,omitempty"`
	ReleaseDate time.Time        `json:"releaseDate"`
	PosterURL   string           `json:"posterUrl,omitempty"`
	CreatedAt   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
	Username    string           `json:"username"`
}

// DedupKey identifies equivalent notifications within one user's inbox.
// future_release keys on (movie, kind) only: its day count is recomputed on
// every scan pass and must not spawn a new record per run.
func (n *Notification) DedupKey() string {
	if n.Kind == KindFutureRelease || n.DaysUntil == nil {
		return fmt.Sprintf("%d|%s", n.MovieID, n.Kind)
	}
	return fmt.Sprintf("%d|%s|%d", n.MovieID, n.Kind, *n.DaysUntil)
}

// Days is a convenience constructor for the optional day counter.
func Days(d int) *int { return &d }
