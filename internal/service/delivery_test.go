package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/domain/registry"
)

type fakeHub struct {
	registered   []registry.Connector
	unregistered []uuid.UUID
	broadcasts   []model.Eventer
	offline      bool
	online       map[string]bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{online: make(map[string]bool)}
}

func (f *fakeHub) Broadcast(ev model.Eventer) bool { f.broadcasts = append(f.broadcasts, ev); return true }
func (f *fakeHub) BroadcastAll(ev model.Eventer) int {
	f.broadcasts = append(f.broadcasts, ev)
	return len(f.online)
}
func (f *fakeHub) Register(conn registry.Connector) {
	f.registered = append(f.registered, conn)
	f.online[conn.GetUsername()] = true
}
func (f *fakeHub) Unregister(username string, connID uuid.UUID) bool {
	f.unregistered = append(f.unregistered, connID)
	if f.offline {
		delete(f.online, username)
		return true
	}
	return false
}
func (f *fakeHub) Touch(string)                 {}
func (f *fakeHub) IsConnected(u string) bool    { return f.online[u] }
func (f *fakeHub) ConnectedCount() int          { return len(f.online) }
func (f *fakeHub) Shutdown()                    {}
func (f *fakeHub) Presence() []model.ConnectedUser {
	var out []model.ConnectedUser
	for u := range f.online {
		out = append(out, model.ConnectedUser{Username: u, ConnectedAt: time.Now()})
	}
	return out
}

func presenceEvents(t *testing.T, hub *fakeHub) []*model.PresencePayload {
	t.Helper()
	var out []*model.PresencePayload
	for _, ev := range hub.broadcasts {
		if ev.GetKind() != model.PresenceUpdate {
			continue
		}
		payload, ok := ev.GetPayload().(*model.PresencePayload)
		require.True(t, ok)
		out = append(out, payload)
	}
	return out
}

func TestSubscribeBroadcastsOnlinePresence(t *testing.T) {
	hub := newFakeHub()
	svc := NewDeliveryService(hub, 8, slog.Default())

	conn, err := svc.Subscribe(context.Background(), "alice")
	require.NoError(t, err)
	defer conn.Close()

	require.Len(t, hub.registered, 1)
	assert.Equal(t, "alice", conn.GetUsername())

	events := presenceEvents(t, hub)
	require.Len(t, events, 1)
	assert.Equal(t, "online", events[0].Status)
	assert.Equal(t, "alice", events[0].Username)
	require.Len(t, events[0].ConnectedUsers, 1)
}

func TestUnsubscribeBroadcastsOnlyOnRealOffline(t *testing.T) {
	hub := newFakeHub()
	svc := NewDeliveryService(hub, 8, slog.Default())

	conn, err := svc.Subscribe(context.Background(), "alice")
	require.NoError(t, err)
	defer conn.Close()

	// A stale detach (the hub reports the user is still online) must not
	// announce an offline transition.
	hub.offline = false
	svc.Unsubscribe("alice", uuid.New())
	require.Len(t, presenceEvents(t, hub), 1, "online broadcast only")

	hub.offline = true
	svc.Unsubscribe("alice", conn.GetID())
	events := presenceEvents(t, hub)
	require.Len(t, events, 2)
	assert.Equal(t, "offline", events[1].Status)
	assert.Empty(t, events[1].ConnectedUsers)
}
