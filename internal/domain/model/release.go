package model

import "time"

// Release is the slice of a movie row the notification pipeline consumes.
type Release struct {
	MovieID     int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	ReleaseDate time.Time `json:"release_date" db:"release_date"`
	PosterURL   string    `json:"poster_url,omitempty" db:"poster_url"`
}

// DaysUntil reports the remaining whole days before the release, rounded up.
// A movie releasing exactly 72h from now is 3 days out.
func (r Release) DaysUntil(now time.Time) int {
	d := r.ReleaseDate.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
