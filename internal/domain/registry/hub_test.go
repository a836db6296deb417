package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(WithMailboxSize(16))
	t.Cleanup(h.Shutdown)
	return h
}

func recvEvent(t *testing.T, conn Connector) model.Eventer {
	t.Helper()
	select {
	case ev, ok := <-conn.Recv():
		require.True(t, ok, "connection closed before the event arrived")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRegisterAndPresence(t *testing.T) {
	h := newTestHub(t)

	alice := NewConnector(context.Background(), "alice", 8)
	bob := NewConnector(context.Background(), "bob", 8)
	h.Register(bob)
	h.Register(alice)

	assert.True(t, h.IsConnected("alice"))
	assert.True(t, h.IsConnected("bob"))
	assert.False(t, h.IsConnected("carol"))
	assert.Equal(t, 2, h.ConnectedCount())

	users := h.Presence()
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username, "presence is ordered by username")
	assert.Equal(t, "bob", users[1].Username)
}

func TestBroadcastTargetsOwner(t *testing.T) {
	h := newTestHub(t)

	alice := NewConnector(context.Background(), "alice", 8)
	bob := NewConnector(context.Background(), "bob", 8)
	h.Register(alice)
	h.Register(bob)

	ev := model.NewPushEvent(model.InboxNew, "alice", model.PriorityHigh, "payload")
	require.True(t, h.Broadcast(ev))

	got := recvEvent(t, alice)
	assert.Equal(t, ev.GetID(), got.GetID())

	select {
	case <-bob.Recv():
		t.Fatal("event leaked to another user's connection")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastMissIsNotAnError(t *testing.T) {
	h := newTestHub(t)
	ev := model.NewPushEvent(model.InboxNew, "ghost", model.PriorityHigh, nil)
	assert.False(t, h.Broadcast(ev))
}

func TestBroadcastAllReachesEveryCell(t *testing.T) {
	h := newTestHub(t)

	alice := NewConnector(context.Background(), "alice", 8)
	bob := NewConnector(context.Background(), "bob", 8)
	h.Register(alice)
	h.Register(bob)

	ev := model.NewPushEvent(model.PresenceUpdate, "", model.PriorityLow, nil)
	assert.Equal(t, 2, h.BroadcastAll(ev))

	recvEvent(t, alice)
	recvEvent(t, bob)
}

func TestLastWriterWinsDisplacement(t *testing.T) {
	h := newTestHub(t)

	first := NewConnector(context.Background(), "alice", 8)
	h.Register(first)
	firstID := first.GetID()
	// Grab the channel up front, the way a transport pump does.
	firstRecv := first.Recv()

	second := NewConnector(context.Background(), "alice", 8)
	h.Register(second)

	// The displaced connection is closed so its transport unwinds.
	select {
	case _, ok := <-firstRecv:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("displaced connection was not closed")
	}

	assert.True(t, h.IsConnected("alice"))
	assert.Equal(t, 1, h.ConnectedCount())

	// The loser's deferred teardown must not evict the winner.
	assert.False(t, h.Unregister("alice", firstID))
	assert.True(t, h.IsConnected("alice"))

	// Events flow to the new session only.
	ev := model.NewPushEvent(model.InboxNew, "alice", model.PriorityHigh, nil)
	require.True(t, h.Broadcast(ev))
	got := recvEvent(t, second)
	assert.Equal(t, ev.GetID(), got.GetID())
}

func TestUnregisterReportsOfflineTransition(t *testing.T) {
	h := newTestHub(t)

	alice := NewConnector(context.Background(), "alice", 8)
	h.Register(alice)

	assert.True(t, h.Unregister("alice", alice.GetID()))
	assert.False(t, h.IsConnected("alice"))
	assert.Equal(t, 0, h.ConnectedCount())

	// A second unregister for the same identity changes nothing.
	assert.False(t, h.Unregister("alice", alice.GetID()))
	assert.False(t, h.Unregister("ghost", alice.GetID()))
}

func TestStaleCloseCannotKillLaterConnection(t *testing.T) {
	h := newTestHub(t)

	// A displaced transport keeps its handle and Closes it again from its
	// deferred teardown, typically after a fresh connection already exists.
	first := NewConnector(context.Background(), "alice", 8)
	h.Register(first)

	second := NewConnector(context.Background(), "alice", 8)
	h.Register(second) // closes first

	first.Close()
	first.Close()

	// The live connection is untouched by the stale closes.
	ev := model.NewPushEvent(model.InboxNew, "alice", model.PriorityHigh, nil)
	require.True(t, second.Send(ev, 100*time.Millisecond))
	got := recvEvent(t, second)
	assert.Equal(t, ev.GetID(), got.GetID())

	require.True(t, h.Broadcast(model.NewPushEvent(model.InboxNew, "alice", model.PriorityHigh, nil)))
	recvEvent(t, second)
}

func TestCloseIsIdempotentAndStopsSend(t *testing.T) {
	conn := NewConnector(context.Background(), "alice", 8)
	conn.Close()
	conn.Close()

	ev := model.NewPushEvent(model.InboxNew, "alice", model.PriorityHigh, nil)
	assert.False(t, conn.Send(ev, 10*time.Millisecond))

	_, ok := <-conn.Recv()
	assert.False(t, ok)
}

func TestConnectorShedsLowPriorityUnderBackpressure(t *testing.T) {
	conn := NewConnector(context.Background(), "alice", 1)
	defer conn.Close()

	high := model.NewPushEvent(model.InboxNew, "alice", model.PriorityHigh, nil)
	low := model.NewPushEvent(model.PresenceUpdate, "alice", model.PriorityLow, nil)

	require.True(t, conn.Send(low, 10*time.Millisecond))

	// Mailbox full: a low-priority event is shed, a high-priority one
	// evicts the buffered low-priority event.
	assert.False(t, conn.Send(low, 10*time.Millisecond))
	assert.True(t, conn.Send(high, 10*time.Millisecond))

	got := <-conn.Recv()
	assert.Equal(t, model.InboxNew, got.GetKind())
}
