package registry

import "time"

// Option configures the Hub.
type Option func(*Hub)

// WithEvictionInterval configures how often the janitor runs to reclaim
// memory from cells whose session vanished without a clean detach.
func WithEvictionInterval(d time.Duration) Option {
	return func(h *Hub) {
		h.config.evictionInterval = d
	}
}

// WithIdleTimeout defines the quiet period after which a sessionless cell
// is eligible for eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.config.idleTimeout = d
	}
}

// WithMailboxSize sets the buffer capacity of each user cell's mailbox.
func WithMailboxSize(size int) Option {
	return func(h *Hub) {
		h.config.mailboxSize = size
	}
}
