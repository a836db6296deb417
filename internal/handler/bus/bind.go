package bus

import (
	"encoding/json"
	"runtime/debug"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// DomainHandler is the functional signature for delivery logic.
type DomainHandler[T any] func(username string, payload *T) (model.Eventer, error)

// Bind connects Watermill to domain logic, handling panic recovery,
// presence filtering, and fan-out.
func Bind[T any](h *InboxHandler, fn DomainHandler[T]) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		defer func() {
			if r := recover(); r != nil {
				h.log.Error("panic recovered in delivery handler",
					"err", r,
					"stack", string(debug.Stack()),
					"msg_id", msg.UUID)
			}
		}()

		username := msg.Metadata.Get("username")
		if username == "" {
			h.log.Warn("inbox event without owner", "msg_id", msg.UUID)
			return nil // ACK: unroutable is a terminal state.
		}

		// Offline users keep their backlog in the store; the next
		// authenticate replays it. Nothing to deliver now.
		if !h.hub.IsConnected(username) {
			return nil
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			h.log.Error("inbox event decode failed", "error", err, "msg_id", msg.UUID)
			return nil // ACK: poison pill protection.
		}

		ev, err := fn(username, payload)
		if err != nil {
			return err
		}
		if ev == nil {
			return nil
		}

		h.hub.Broadcast(ev)
		return nil
	}
}
