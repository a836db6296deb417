package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/service"
)

// InboxStore is the notification-store surface the session protocol drives.
type InboxStore interface {
	Inbox(username string) []*model.Notification
	UnreadCount(username string) int
	TotalCount(username string) int
	MarkRead(id, username string)
	DeleteOne(id, username string) bool
	ClearAll(username string)
}

type WSHandler struct {
	logger    *slog.Logger
	deliverer service.Deliverer
	inbox     InboxStore
	upgrader  websocket.Upgrader
}

func NewWSHandler(logger *slog.Logger, deliverer service.Deliverer, inbox InboxStore) *WSHandler {
	return &WSHandler{
		logger:    logger,
		deliverer: deliverer,
		inbox:     inbox,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true }, // Security: adjust for production
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "error", err)
		return
	}

	s := newSession(r.Context(), sock, h)
	s.run()
}
