package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/domain/registry"
	wsmarshaller "github.com/cinehub/cinehub-service/internal/handler/marshaller/ws"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	maxFrameSize = 8 * 1024
)

// Client->server frame envelope.
type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type authPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// session is the per-connection protocol state machine:
// Connecting -> Authenticated -> Disconnected (terminal). Before
// authentication only the authenticate command is honored; mutation
// commands are silently ignored.
type session struct {
	ctx  context.Context
	sock *websocket.Conn
	h    *WSHandler

	// Set on successful authenticate; nil while Connecting. connID is
	// captured eagerly because the connector object is pooled and its
	// identity is unreliable once displaced.
	conn     registry.Connector
	connID   uuid.UUID
	username string
}

func newSession(ctx context.Context, sock *websocket.Conn, h *WSHandler) *session {
	return &session{ctx: ctx, sock: sock, h: h}
}

func (s *session) authenticated() bool { return s.conn != nil }

// run drives the read side until the client goes away, then tears down the
// registry entry.
func (s *session) run() {
	defer s.teardown()

	s.sock.SetReadLimit(maxFrameSize)
	_ = s.sock.SetReadDeadline(time.Now().Add(pongWait))
	s.sock.SetPongHandler(func(string) error {
		return s.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.sock.ReadMessage()
		if err != nil {
			return
		}
		_ = s.sock.SetReadDeadline(time.Now().Add(pongWait))

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.h.logger.Debug("malformed client frame ignored", "error", err)
			continue
		}
		s.dispatch(frame)
	}
}

func (s *session) dispatch(frame clientFrame) {
	switch frame.Event {
	case "authenticate":
		s.handleAuthenticate(frame.Data)
	case "mark-notification-read":
		s.handleMarkRead(frame.Data)
	case "clear-all-notifications":
		s.handleClearAll()
	case "delete-notification":
		s.handleDelete(frame.Data)
	case "user-activity":
		s.handleActivity()
	default:
		s.h.logger.Debug("unknown client event ignored", "event", frame.Event)
	}
}

func (s *session) handleAuthenticate(data json.RawMessage) {
	var auth authPayload
	_ = json.Unmarshal(data, &auth)

	if auth.UserID == "" || auth.Username == "" {
		s.emit(model.NewPushEvent(model.ConnectionStatus, "", model.PriorityHigh, &model.StatusPayload{
			Connected: false,
			Message:   "Authentication required",
			Timestamp: time.Now(),
		}))
		return
	}

	conn, err := s.h.deliverer.Subscribe(s.ctx, auth.Username)
	if err != nil {
		s.h.logger.Error("subscribe failed", "username", auth.Username, "error", err)
		return
	}
	s.conn = conn
	s.connID = conn.GetID()
	s.username = auth.Username
	go s.writePump(conn)

	s.emit(model.NewPushEvent(model.ConnectionStatus, s.username, model.PriorityHigh, &model.StatusPayload{
		Connected: true,
		Message:   "Successfully connected to notification system",
		Timestamp: time.Now(),
	}))

	// Replay the buffered backlog as the initial snapshot.
	s.emit(model.NewPushEvent(model.InboxSnapshot, s.username, model.PriorityHigh, &model.SnapshotPayload{
		Notifications: s.h.inbox.Inbox(s.username),
		UnreadCount:   s.h.inbox.UnreadCount(s.username),
		TotalCount:    s.h.inbox.TotalCount(s.username),
		User:          model.SessionUser{ID: auth.UserID, Username: auth.Username},
	}))
}

func (s *session) handleMarkRead(data json.RawMessage) {
	if !s.authenticated() {
		return
	}
	if id := decodeID(data); id != "" {
		s.h.inbox.MarkRead(id, s.username)
	}
	s.pushUpdated()
}

func (s *session) handleDelete(data json.RawMessage) {
	if !s.authenticated() {
		return
	}
	if id := decodeID(data); id != "" {
		s.h.inbox.DeleteOne(id, s.username)
	}
	s.pushUpdated()
}

func (s *session) handleClearAll() {
	if !s.authenticated() {
		return
	}
	s.h.inbox.ClearAll(s.username)
	s.pushUpdated()
}

func (s *session) handleActivity() {
	if !s.authenticated() {
		return
	}
	s.h.deliverer.Touch(s.username)
}

// pushUpdated acknowledges a client command with a fresh snapshot on the
// same connection.
func (s *session) pushUpdated() {
	s.emit(model.NewPushEvent(model.InboxUpdated, s.username, model.PriorityHigh, &model.InboxUpdate{
		Notifications: s.h.inbox.Inbox(s.username),
		UnreadCount:   s.h.inbox.UnreadCount(s.username),
		TotalCount:    s.h.inbox.TotalCount(s.username),
	}))
}

// emit routes an event to the client. After authentication everything goes
// through the connector so the write pump stays the sole socket writer;
// before it, the read goroutine is the only writer and may use the socket
// directly.
func (s *session) emit(ev model.Eventer) {
	if s.conn != nil {
		s.conn.Send(ev, writeWait)
		return
	}

	data, err := wsmarshaller.MarshallDeliveryEvent(ev)
	if err != nil {
		s.h.logger.Error("failed to marshal ws event", "error", err)
		return
	}
	_ = s.sock.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.sock.WriteMessage(websocket.TextMessage, data)
}

// writePump drains the connector mailbox onto the socket. It exits when the
// connector closes (disconnect, or displaced by a newer authentication) and
// takes the socket down with it so the read loop unwinds too.
func (s *session) writePump(conn registry.Connector) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.sock.Close()
	}()

	// Capture the mailbox channel once; this pump drains exactly the
	// connection it was started for, however long it outlives it.
	recv := conn.Recv()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-recv:
			if !ok {
				_ = s.sock.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}

			data, err := wsmarshaller.MarshallDeliveryEvent(ev)
			if err != nil {
				s.h.logger.Error("failed to marshal ws event", "error", err)
				continue
			}
			_ = s.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				s.h.logger.Warn("ws send failed", "username", conn.GetUsername(), "error", err)
				return
			}
		case <-ticker.C:
			if err := s.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *session) teardown() {
	if s.authenticated() {
		s.h.deliverer.Unsubscribe(s.username, s.connID)
		s.conn.Close()
	}
	_ = s.sock.Close()
}

// decodeID accepts both a bare JSON string and an {"id": ...} object; the
// browser client has shipped both shapes.
func decodeID(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj.ID
	}
	return ""
}
