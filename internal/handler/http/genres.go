package http

import (
	"encoding/json"
	"net/http"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

func (h *API) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.ListGenres(r.Context())
	if err != nil {
		h.log.Error("listing genres", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (h *API) createGenre(w http.ResponseWriter, r *http.Request) {
	var g model.Genre
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil || g.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.catalog.CreateGenre(r.Context(), &g); err != nil {
		writeStoreError(w, err, "genre not found")
		return
	}
	writeJSON(w, http.StatusCreated, g)
}
