package lp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	wsmarshaller "github.com/cinehub/cinehub-service/internal/handler/marshaller/ws"
	"github.com/cinehub/cinehub-service/internal/service"
)

const (
	pollTimeout = 30 * time.Second
	batchLimit  = 15
)

// LPHandler is the polling fallback for clients that cannot hold a
// WebSocket open. It shares the delivery service with the WS transport, so
// a poll still counts as that username's single tracked connection.
type LPHandler struct {
	deliverer service.Deliverer
}

func NewLPHandler(deliverer service.Deliverer) *LPHandler {
	return &LPHandler{
		deliverer: deliverer,
	}
}

// Poll holds the request until an event arrives or the timeout fires.
func (h *LPHandler) Poll(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}

	// Temporary subscription, alive only for this request.
	conn, err := h.deliverer.Subscribe(r.Context(), username)
	if err != nil {
		http.Error(w, "failed to subscribe", http.StatusInternalServerError)
		return
	}
	defer h.deliverer.Unsubscribe(username, conn.GetID())
	defer conn.Close()

	var events []model.Eventer

	select {
	case <-r.Context().Done():
		return

	case <-time.After(pollTimeout):
		w.WriteHeader(http.StatusNoContent)
		return

	case ev, ok := <-conn.Recv():
		if !ok {
			return
		}
		events = append(events, ev)

		// Drain whatever else is buffered so the client needs fewer
		// round trips.
	drainLoop:
		for range batchLimit {
			select {
			case nextEv := <-conn.Recv():
				events = append(events, nextEv)
			default:
				break drainLoop
			}
		}
	}

	out := make([]json.RawMessage, 0, len(events))
	for _, ev := range events {
		data, err := wsmarshaller.MarshallDeliveryEvent(ev)
		if err != nil {
			continue
		}
		out = append(out, data)
	}

	body, err := json.Marshal(out)
	if err != nil {
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
