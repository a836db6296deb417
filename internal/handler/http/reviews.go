package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

func (h *API) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	reviews, err := h.catalog.ListReviews(r.Context(), id)
	if err != nil {
		h.log.Error("listing reviews", "movie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *API) createReview(w http.ResponseWriter, r *http.Request) {
	var review model.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if review.MovieID == 0 || review.Username == "" {
		writeError(w, http.StatusBadRequest, "movie_id and username are required")
		return
	}
	if err := h.catalog.CreateReview(r.Context(), &review); err != nil {
		writeStoreError(w, err, "movie not found")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *API) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return
	}
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if err := h.catalog.DeleteReview(r.Context(), id, username); err != nil {
		writeStoreError(w, err, "review not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}
