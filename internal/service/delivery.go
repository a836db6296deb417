package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/domain/registry"
)

// Deliverer is the primary interface for push-channel transports
// (WebSocket, long-poll).
type Deliverer interface {
	Subscribe(ctx context.Context, username string) (registry.Connector, error)
	Unsubscribe(username string, connID uuid.UUID)
	Touch(username string)
	IsConnected(username string) bool
	Presence() []model.ConnectedUser
	ConnectedCount() int
}

type DeliveryService struct {
	hub        registry.Hubber
	bufferSize int
	log        *slog.Logger
}

func NewDeliveryService(hub registry.Hubber, bufferSize int, log *slog.Logger) *DeliveryService {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &DeliveryService{hub: hub, bufferSize: bufferSize, log: log}
}

// Subscribe attaches a fresh connector for username (displacing any previous
// session) and broadcasts the updated presence list to every connection,
// including the new one.
func (s *DeliveryService) Subscribe(ctx context.Context, username string) (registry.Connector, error) {
	conn := registry.NewConnector(ctx, username, s.bufferSize)
	s.hub.Register(conn)

	s.broadcastPresence(username, "online")
	s.log.Info("push session attached", "username", username, "conn_id", conn.GetID())
	return conn, nil
}

// Unsubscribe detaches connID. Presence is rebroadcast only when the
// username actually went offline; a stale detach from a connection that
// already lost the last-writer-wins race changes nothing.
func (s *DeliveryService) Unsubscribe(username string, connID uuid.UUID) {
	if s.hub.Unregister(username, connID) {
		s.broadcastPresence(username, "offline")
		s.log.Info("push session detached", "username", username, "conn_id", connID)
	}
}

// Touch records client heartbeat activity. No presence broadcast.
func (s *DeliveryService) Touch(username string) {
	s.hub.Touch(username)
}

func (s *DeliveryService) IsConnected(username string) bool {
	return s.hub.IsConnected(username)
}

func (s *DeliveryService) Presence() []model.ConnectedUser {
	return s.hub.Presence()
}

func (s *DeliveryService) ConnectedCount() int {
	return s.hub.ConnectedCount()
}

func (s *DeliveryService) broadcastPresence(username, status string) {
	ev := model.NewPushEvent(model.PresenceUpdate, "", model.PriorityLow, &model.PresencePayload{
		UserID:         username,
		Username:       username,
		Status:         status,
		ConnectedUsers: s.hub.Presence(),
	})
	s.hub.BroadcastAll(ev)
}
