package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// Interface guard
var _ Connector = (*connect)(nil)

// Connector is the hub-facing view of one live push-channel session.
// Transports (WebSocket, long-poll) drain Recv and own the actual socket.
type Connector interface {
	GetID() uuid.UUID
	GetUsername() string
	GetConnectedAt() time.Time
	Send(ev model.Eventer, timeout time.Duration) bool
	Recv() <-chan model.Eventer
	Close()
}

// connect is allocated per session and never reused. A displaced transport
// keeps its handle until its deferred teardown runs, long after the hub has
// closed the connection, so Close must stay a permanent no-op after the
// first call. That rules out recycling the struct.
type connect struct {
	id          uuid.UUID
	username    string
	connectedAt time.Time

	ctx      context.Context
	cancelFn context.CancelFunc

	mu     sync.RWMutex
	closed bool
	sendCh chan model.Eventer

	droppedCount uint64
}

func NewConnector(ctx context.Context, username string, bufferSize int) Connector {
	childCtx, cancel := context.WithCancel(ctx)

	return &connect{
		id:          uuid.New(),
		username:    username,
		connectedAt: time.Now(),
		ctx:         childCtx,
		cancelFn:    cancel,
		sendCh:      make(chan model.Eventer, bufferSize),
	}
}

func (c *connect) GetID() uuid.UUID          { return c.id }
func (c *connect) GetUsername() string       { return c.username }
func (c *connect) GetConnectedAt() time.Time { return c.connectedAt }

// Send attempts to push an event into the session's mailbox. It waits up to
// timeout for space, then falls back to priority-based shedding. A dropped
// event is never retried: the next authenticate replay supplies the backlog.
func (c *connect) Send(ev model.Eventer, timeout time.Duration) bool {
	// The read lock fences the channel send against Close. Close cancels
	// the context before taking the write lock, so a blocked sender always
	// unblocks via ctx.Done rather than holding Close up for long.
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-c.ctx.Done():
		return false
	case c.sendCh <- ev:
		return true
	case <-ctx.Done():
		return c.handleBackpressure(ev)
	}
}

// handleBackpressure manages a saturated buffer by dropping low-priority
// events. Presence updates are shed first; inbox snapshots evict them.
// Caller holds the read lock.
func (c *connect) handleBackpressure(ev model.Eventer) bool {
	if ev.GetPriority() <= model.PriorityLow {
		atomic.AddUint64(&c.droppedCount, 1)
		return false
	}

	select {
	case oldEv := <-c.sendCh:
		if oldEv.GetPriority() < ev.GetPriority() {
			select {
			case c.sendCh <- ev:
				return true
			default:
			}
		} else {
			// Put the displaced event back, best effort.
			select {
			case c.sendCh <- oldEv:
			default:
			}
		}
	default:
	}

	atomic.AddUint64(&c.droppedCount, 1)
	return false
}

func (c *connect) Recv() <-chan model.Eventer { return c.sendCh }

// Close terminates the session. Safe to call concurrently from the cell
// (replacement, shutdown) and the transport (deferred teardown), and a
// permanent no-op on every call after the first: a stale handle held by a
// displaced transport can never tear down a later session.
func (c *connect) Close() {
	c.cancelFn()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	// Closing the channel signals the transport pump (via !ok) to finish
	// its loop and tear down the socket.
	close(c.sendCh)
}
