package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type watchlistRequest struct {
	Username string `json:"username"`
	MovieID  int64  `json:"movie_id"`
}

func (h *API) listWatchlist(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	items, err := h.catalog.ListWatchlist(r.Context(), username)
	if err != nil {
		h.log.Error("listing watchlist", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *API) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.MovieID == 0 {
		writeError(w, http.StatusBadRequest, "username and movie_id are required")
		return
	}
	item, err := h.catalog.AddToWatchlist(r.Context(), req.Username, req.MovieID)
	if err != nil {
		writeStoreError(w, err, "movie not found")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *API) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	if err := h.catalog.RemoveFromWatchlist(r.Context(), username, movieID); err != nil {
		writeStoreError(w, err, "watchlist entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from watchlist"})
}
