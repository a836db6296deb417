package wsmarshaller

import (
	"encoding/json"
	"fmt"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// WSEvent is the generic wrapper for WebSocket frames so every push shares
// a consistent envelope.
type WSEvent struct {
	Event   string `json:"event"`
	ID      string `json:"id"`
	SentAt  int64  `json:"sent_at"`
	Payload any    `json:"payload"`
}

// MarshallDeliveryEvent prepares a push event for WebSocket transmission.
func MarshallDeliveryEvent(ev model.Eventer) ([]byte, error) {
	name, ok := eventNames[ev.GetKind()]
	if !ok {
		return nil, fmt.Errorf("ws marshaller: unknown event kind %d", ev.GetKind())
	}

	return json.Marshal(&WSEvent{
		Event:   name,
		ID:      ev.GetID(),
		SentAt:  ev.GetOccurredAt(),
		Payload: ev.GetPayload(),
	})
}
