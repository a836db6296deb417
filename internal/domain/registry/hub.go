package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// Hubber is the gateway for session tracking and event routing.
type Hubber interface {
	Broadcast(ev model.Eventer) bool
	BroadcastAll(ev model.Eventer) int
	Register(conn Connector)
	Unregister(username string, connID uuid.UUID) bool
	Touch(username string)
	IsConnected(username string) bool
	Presence() []model.ConnectedUser
	ConnectedCount() int
	Shutdown()
}

type hubConfig struct {
	evictionInterval time.Duration
	idleTimeout      time.Duration
	mailboxSize      int
}

// Hub tracks one cell per online username.
type Hub struct {
	// cells stores map[string]Celler, keyed by username.
	cells sync.Map

	config hubConfig

	janitorStop chan struct{}
	stopOnce    sync.Once
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		config: hubConfig{
			evictionInterval: 15 * time.Minute,
			idleTimeout:      30 * time.Minute,
			mailboxSize:      256,
		},
		janitorStop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.janitor()
	return h
}

func (h *Hub) IsConnected(username string) bool {
	val, ok := h.cells.Load(username)
	if !ok {
		return false
	}
	cell, ok := val.(Celler)
	return ok && cell.Session() != nil
}

// Broadcast routes an event to its owner's cell. Returns false on a miss or
// a full mailbox; the caller never retries, the store replays on reconnect.
func (h *Hub) Broadcast(ev model.Eventer) bool {
	if val, ok := h.cells.Load(ev.GetUsername()); ok {
		if cell, ok := val.(Celler); ok {
			return cell.Push(ev)
		}
	}
	return false
}

// BroadcastAll pushes an event into every live cell and reports how many
// accepted it. Used for presence updates.
func (h *Hub) BroadcastAll(ev model.Eventer) int {
	delivered := 0
	h.cells.Range(func(_, val any) bool {
		if cell, ok := val.(Celler); ok && cell.Push(ev) {
			delivered++
		}
		return true
	})
	return delivered
}

// Register attaches a connection, creating the cell on first contact.
// A username's previous connection is displaced (last-writer-wins).
func (h *Hub) Register(conn Connector) {
	username := conn.GetUsername()
	val, _ := h.cells.LoadOrStore(username, Celler(NewCell(username, h.config.mailboxSize)))

	if cell, ok := val.(Celler); ok {
		cell.Attach(conn)
	}
}

// Unregister detaches connID from its cell and purges the cell when no
// session remains. Reports whether the username actually went offline.
func (h *Hub) Unregister(username string, connID uuid.UUID) bool {
	val, ok := h.cells.Load(username)
	if !ok {
		return false
	}
	cell, ok := val.(Celler)
	if !ok {
		return false
	}
	if cell.Detach(connID) {
		cell.Stop()
		h.cells.Delete(username)
		return true
	}
	return false
}

// Touch refreshes the activity timestamp for the username's cell.
func (h *Hub) Touch(username string) {
	if val, ok := h.cells.Load(username); ok {
		if cell, ok := val.(Celler); ok {
			cell.Touch()
		}
	}
}

// Presence snapshots every live session, ordered by username for stable
// broadcast payloads.
func (h *Hub) Presence() []model.ConnectedUser {
	var users []model.ConnectedUser
	h.cells.Range(func(key, val any) bool {
		cell, ok := val.(Celler)
		if !ok {
			return true
		}
		if sess := cell.Session(); sess != nil {
			users = append(users, model.ConnectedUser{
				Username:    key.(string),
				ConnectedAt: sess.GetConnectedAt(),
			})
		}
		return true
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

func (h *Hub) ConnectedCount() int {
	count := 0
	h.cells.Range(func(_, val any) bool {
		if cell, ok := val.(Celler); ok && cell.Session() != nil {
			count++
		}
		return true
	})
	return count
}

// janitor reclaims cells that lost their session without a clean detach.
func (h *Hub) janitor() {
	ticker := time.NewTicker(h.config.evictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.janitorStop:
			return
		case <-ticker.C:
			h.cells.Range(func(key, val any) bool {
				if cell, ok := val.(Celler); ok && cell.IsIdle(h.config.idleTimeout) {
					cell.Stop()
					h.cells.Delete(key)
				}
				return true
			})
		}
	}
}

// Shutdown stops every cell goroutine and the janitor.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.janitorStop)
		h.cells.Range(func(key, val any) bool {
			if cell, ok := val.(Celler); ok {
				if sess := cell.Session(); sess != nil {
					sess.Close()
				}
				cell.Stop()
			}
			h.cells.Delete(key)
			return true
		})
	})
}
