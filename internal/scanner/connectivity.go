package scanner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Guard gates catalog access on database connectivity. Any query failure
// (after transient retries) opens the breaker; scan passes are skipped while
// it is open; the periodic health probe closes it again.
type Guard struct {
	cb         *gobreaker.CircuitBreaker
	maxRetries uint64
	log        *slog.Logger
}

// NewGuard builds a guard whose breaker re-admits a single probe after
// cooldown. maxRetries bounds the transient-error retry loop per query.
func NewGuard(cooldown time.Duration, maxRetries uint64, log *slog.Logger) *Guard {
	g := &Guard{maxRetries: maxRetries, log: log}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("catalog connectivity changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	return g
}

// Available reports whether scan passes should run.
func (g *Guard) Available() bool {
	return g.cb.State() != gobreaker.StateOpen
}

// Do runs op through the breaker, retrying transient errors with exponential
// backoff before the failure counts against connectivity.
func (g *Guard) Do(ctx context.Context, op func(context.Context) error) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.retryTransient(ctx, op)
	})
	return err
}

// Probe runs the lightweight health query through the breaker. In half-open
// state a success closes the breaker and scanning resumes.
func (g *Guard) Probe(ctx context.Context, ping func(context.Context) error) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, ping(ctx)
	})
	return err
}

func (g *Guard) retryTransient(ctx context.Context, op func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			g.log.Debug("transient catalog error, retrying", "error", err)
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx))
}

// isTransient classifies disconnect-class errors worth retrying. sqlite
// signals contention rather than broken sockets, so busy/locked plus query
// deadline are the retryable set.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
