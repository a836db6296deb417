package http

import (
	"net/http"
	"time"
)

func (h *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "OK",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"connectedUsers": h.deliverer.ConnectedCount(),
	})
}
