package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// TopicInboxUpdated carries per-user inbox refresh events from the
// notification store to the delivery router.
const TopicInboxUpdated = "inbox.updated.v1"

// EventDispatcher is the high-level contract for store-side mutation events.
// The store stays agnostic of the transport implementation.
type EventDispatcher interface {
	InboxChanged(ctx context.Context, update model.InboxUpdate)
	Subscriber() message.Subscriber
	Close() error
}

type eventDispatcher struct {
	bus *gochannel.GoChannel
	log *slog.Logger
}

// NewEventDispatcher builds the in-process pub/sub bridge. The process is
// the only producer and the only consumer; a broker is explicitly out of
// scope (state is not shared across instances).
func NewEventDispatcher(log *slog.Logger, wmLog watermill.LoggerAdapter) EventDispatcher {
	bus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 256,
		},
		wmLog,
	)
	return &eventDispatcher{bus: bus, log: log}
}

// InboxChanged implements notify.Sink. Publish failures are log-only: a lost
// push is recovered by the next authenticate replay, never retried.
func (d *eventDispatcher) InboxChanged(ctx context.Context, update model.InboxUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		d.log.Error("inbox event marshal failed", "error", err, "username", update.Username)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("username", update.Username)

	if err := d.bus.Publish(TopicInboxUpdated, msg); err != nil {
		d.log.Error("inbox event publish failed", "error", err, "username", update.Username)
	}
}

func (d *eventDispatcher) Subscriber() message.Subscriber {
	return d.bus
}

func (d *eventDispatcher) Close() error {
	return d.bus.Close()
}
