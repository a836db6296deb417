package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

func (h *API) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.ListMovies(r.Context())
	if err != nil {
		h.log.Error("listing movies", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *API) upcomingMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.UpcomingMovies(r.Context())
	if err != nil {
		h.log.Error("listing upcoming movies", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *API) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	movie, err := h.catalog.GetMovie(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *API) createMovie(w http.ResponseWriter, r *http.Request) {
	var m model.Movie
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Title == "" || m.Year == 0 {
		writeError(w, http.StatusBadRequest, "Title and year are required")
		return
	}
	if m.RatingLabel == "" {
		m.RatingLabel = "Not Rated"
	}
	if err := h.catalog.CreateMovie(r.Context(), &m); err != nil {
		writeStoreError(w, err, "movie not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Movie added successfully",
		"movie":   m,
	})
}

func (h *API) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	var m model.Movie
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m.ID = id
	if err := h.catalog.UpdateMovie(r.Context(), &m); err != nil {
		writeStoreError(w, err, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Movie updated", "movie": m})
}

func (h *API) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	if err := h.catalog.DeleteMovie(r.Context(), id); err != nil {
		writeStoreError(w, err, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Movie deleted"})
}

func (h *API) searchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	movies, err := h.catalog.SearchMovies(r.Context(), query)
	if err != nil {
		h.log.Error("searching movies", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// movieAwards mirrors the legacy display format: one preformatted line per
// award.
func (h *API) movieAwards(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	awards, err := h.catalog.MovieAwards(r.Context(), id)
	if err != nil {
		h.log.Error("listing awards", "movie_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	formatted := make([]string, 0, len(awards))
	for _, a := range awards {
		formatted = append(formatted,
			fmt.Sprintf("%s for %s in %d (%s)", a.Status, a.AwardName, a.Year, a.Category))
	}
	writeJSON(w, http.StatusOK, map[string]any{"awards": formatted})
}

func movieID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
}
