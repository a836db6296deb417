/*
Package registry tracks which username is attached to which live push-channel
connection.

Key concepts:
  - Cells: every online user is represented by an isolated 'Cell' that owns
    the delivery loop for that identity. The per-cell mailbox decouples the
    notification core from slow network consumers.
  - Single session: a username maps to at most one tracked connection at a
    time. A newer authentication wins and the previous connection is closed.
  - Concurrency: lock-free hub lookups via sync.Map, fine-grained locking
    inside individual cells.
*/
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// Celler defines the internal API for user-specific delivery units.
type Celler interface {
	Push(ev model.Eventer) bool
	Attach(conn Connector)
	Detach(connID uuid.UUID) bool
	Session() Connector
	Touch()
	LastActivity() time.Time
	IsIdle(timeout time.Duration) bool
	Stop()
}

// Cell owns event delivery for a single username.
type Cell struct {
	username string

	// Buffered channel decoupling the dispatcher from socket writes.
	mailbox chan model.Eventer

	// The currently tracked connection. Last-writer-wins: Attach replaces
	// it and closes the loser so its transport pump can unwind.
	session Connector

	mu sync.RWMutex

	doneCh chan struct{}

	// lastActivityAt is refreshed by deliveries, attaches, and the
	// client's activity heartbeat.
	lastActivityAt time.Time
}

func NewCell(username string, bufferSize int) *Cell {
	c := &Cell{
		username:       username,
		mailbox:        make(chan model.Eventer, bufferSize),
		doneCh:         make(chan struct{}),
		lastActivityAt: time.Now(),
	}
	go c.loop()
	return c
}

// IsIdle reports whether the cell has no session and has been quiet long
// enough to be reclaimed by the janitor.
func (c *Cell) IsIdle(timeout time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session == nil && time.Since(c.lastActivityAt) > timeout
}

func (c *Cell) Touch() {
	c.mu.Lock()
	c.lastActivityAt = time.Now()
	c.mu.Unlock()
}

func (c *Cell) LastActivity() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActivityAt
}

func (c *Cell) Push(ev model.Eventer) bool {
	c.Touch()
	select {
	case c.mailbox <- ev:
		return true
	default:
		return false
	}
}

// Attach installs conn as the cell's tracked session, displacing and closing
// any previous one.
func (c *Cell) Attach(conn Connector) {
	c.mu.Lock()
	prev := c.session
	c.session = conn
	c.lastActivityAt = time.Now()
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// Detach removes the session if connID still identifies it. A stale detach
// from a connection that already lost the last-writer-wins race is a no-op.
// Returns true when the cell is left with no session.
func (c *Cell) Detach(connID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.GetID() == connID {
		c.session = nil
	}
	c.lastActivityAt = time.Now()
	return c.session == nil
}

func (c *Cell) Session() Connector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Cell) loop() {
	for {
		select {
		case <-c.doneCh:
			return
		case ev := <-c.mailbox:
			c.deliver(ev)
		}
	}
}

func (c *Cell) deliver(ev model.Eventer) {
	c.mu.RLock()
	conn := c.session
	c.mu.RUnlock()

	if conn == nil {
		return
	}
	conn.Send(ev, 500*time.Millisecond)
}

func (c *Cell) Stop() {
	close(c.doneCh)
}
