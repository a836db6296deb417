package wsmarshaller

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

func TestMarshallDeliveryEvent(t *testing.T) {
	tests := []struct {
		kind model.EventKind
		name string
	}{
		{model.ConnectionStatus, "connection-status"},
		{model.InboxSnapshot, "current-notifications"},
		{model.InboxNew, "new-notification"},
		{model.InboxUpdated, "notifications-updated"},
		{model.PresenceUpdate, "user-status-update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := model.NewPushEvent(tt.kind, "alice", model.PriorityNormal, map[string]any{"k": "v"})

			data, err := MarshallDeliveryEvent(ev)
			require.NoError(t, err)

			var frame WSEvent
			require.NoError(t, json.Unmarshal(data, &frame))
			assert.Equal(t, tt.name, frame.Event)
			assert.Equal(t, ev.GetID(), frame.ID)
			assert.Equal(t, ev.GetOccurredAt(), frame.SentAt)
		})
	}
}

func TestMarshallDeliveryEventUnknownKind(t *testing.T) {
	ev := model.NewPushEvent(model.EventKind(99), "alice", model.PriorityNormal, nil)
	_, err := MarshallDeliveryEvent(ev)
	assert.Error(t, err)
}
