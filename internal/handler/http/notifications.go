package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// releaseNotice is the read-endpoint projection of a release row, computed
// on demand rather than pulled from anyone's inbox.
type releaseNotice struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ReleaseDate time.Time `json:"release_date"`
	PosterURL   string    `json:"poster_url,omitempty"`
	Type        string    `json:"type"`
	DaysUntil   *int      `json:"days_until,omitempty"`
	Priority    int       `json:"priority,omitempty"`
}

// liveNotifications exposes the in-memory store across all users. Legacy,
// not part of the per-user delivery guarantee.
func (h *API) liveNotifications(w http.ResponseWriter, r *http.Request) {
	notifications := h.inbox.AllNotifications()
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  h.inbox.TotalUnread(),
		"total_count":   len(notifications),
	})
}

func (h *API) upcomingReleaseNotices(w http.ResponseWriter, r *http.Request) {
	releases, err := h.catalog.UpcomingReleases(r.Context(), 7*24*time.Hour)
	if err != nil {
		h.log.Error("fetching upcoming releases", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	now := time.Now()
	out := make([]releaseNotice, 0, len(releases))
	for _, rel := range releases {
		days := rel.DaysUntil(now)
		out = append(out, releaseNotice{
			ID:          rel.MovieID,
			Title:       rel.Title,
			Message:     fmt.Sprintf("%q releases in %d days", rel.Title, days),
			ReleaseDate: rel.ReleaseDate,
			PosterURL:   rel.PosterURL,
			Type:        string(model.KindUpcomingRelease),
			DaysUntil:   model.Days(days),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *API) todayReleaseNotices(w http.ResponseWriter, r *http.Request) {
	releases, err := h.catalog.TodayReleases(r.Context())
	if err != nil {
		h.log.Error("fetching today releases", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	out := make([]releaseNotice, 0, len(releases))
	for _, rel := range releases {
		out = append(out, releaseNotice{
			ID:          rel.MovieID,
			Title:       rel.Title,
			Message:     fmt.Sprintf("%q is released today!", rel.Title),
			ReleaseDate: rel.ReleaseDate,
			PosterURL:   rel.PosterURL,
			Type:        string(model.KindTodayRelease),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// allReleaseNotices combines today's releases (first) with every future
// release.
func (h *API) allReleaseNotices(w http.ResponseWriter, r *http.Request) {
	today, err := h.catalog.TodayReleases(r.Context())
	if err != nil {
		h.log.Error("fetching today releases", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	future, err := h.catalog.FutureReleases(r.Context())
	if err != nil {
		h.log.Error("fetching future releases", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	now := time.Now()
	out := make([]releaseNotice, 0, len(today)+len(future))
	for _, rel := range today {
		out = append(out, releaseNotice{
			ID:          rel.MovieID,
			Title:       rel.Title,
			Message:     fmt.Sprintf("%q is released today!", rel.Title),
			ReleaseDate: rel.ReleaseDate,
			PosterURL:   rel.PosterURL,
			Type:        string(model.KindTodayRelease),
			Priority:    1,
		})
	}
	for _, rel := range future {
		days := rel.DaysUntil(now)
		out = append(out, releaseNotice{
			ID:          rel.MovieID,
			Title:       rel.Title,
			Message:     fmt.Sprintf("%q releases in %d days", rel.Title, days),
			ReleaseDate: rel.ReleaseDate,
			PosterURL:   rel.PosterURL,
			Type:        string(model.KindUpcomingRelease),
			DaysUntil:   model.Days(days),
			Priority:    2,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *API) notificationCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.CountFutureMovies(r.Context())
	if err != nil {
		h.log.Error("counting future movies", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch notification count")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

type sendToUserRequest struct {
	Username     string             `json:"username"`
	Notification model.Notification `json:"notification"`
}

// sendToUser files a hand-built notification for one connected user.
func (h *API) sendToUser(w http.ResponseWriter, r *http.Request) {
	var req sendToUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username and notification are required")
		return
	}
	if !h.deliverer.IsConnected(req.Username) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "User not connected",
		})
		return
	}

	h.inbox.AddForUser(r.Context(), req.Notification, req.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Notification sent",
	})
}

type sendAllFutureRequest struct {
	Username string `json:"username"`
}

func (h *API) sendAllFuture(w http.ResponseWriter, r *http.Request) {
	var req sendAllFutureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Username required")
		return
	}

	count, err := h.scanner.SendAllFuture(r.Context(), req.Username)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

func (h *API) checkAllFuture(w http.ResponseWriter, r *http.Request) {
	if err := h.scanner.CheckAllFutureReleases(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "All future releases checked and notifications sent",
	})
}
