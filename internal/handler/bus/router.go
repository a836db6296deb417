package bus

import (
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/cinehub/cinehub-service/internal/adapter/pubsub"
	"github.com/cinehub/cinehub-service/internal/domain/model"
	"github.com/cinehub/cinehub-service/internal/domain/registry"
)

// InboxHandler bridges store-side inbox events onto live connections.
type InboxHandler struct {
	hub registry.Hubber
	log *slog.Logger
}

func NewInboxHandler(hub registry.Hubber, log *slog.Logger) *InboxHandler {
	return &InboxHandler{hub: hub, log: log}
}

// OnInboxUpdated turns a store mutation into a targeted new-notification
// push for the owning user's connection.
func (h *InboxHandler) OnInboxUpdated(username string, update *model.InboxUpdate) (model.Eventer, error) {
	return model.NewPushEvent(model.InboxNew, username, model.PriorityHigh, update), nil
}

func NewWatermillRouter(wmLog watermill.LoggerAdapter) (*message.Router, error) {
	return message.NewRouter(message.RouterConfig{}, wmLog)
}

// RegisterHandlers wires every inbox topic onto the router. The table shape
// leaves room for additional delivery topics without touching the plumbing.
func RegisterHandlers(router *message.Router, h *InboxHandler, dispatcher pubsub.EventDispatcher) error {
	configs := []struct {
		name    string
		topic   string
		handler message.NoPublishHandlerFunc
	}{
		{"ON_INBOX_UPDATED", pubsub.TopicInboxUpdated, Bind(h, h.OnInboxUpdated)},
	}

	for _, c := range configs {
		router.AddConsumerHandler(c.name, c.topic, dispatcher.Subscriber(), c.handler).AddMiddleware(
			LoggingMiddleware(h.log),
			middleware.Recoverer,
			middleware.Timeout(5*time.Second),
		)
	}

	h.log.Info("delivery pipeline ready", "topic", pubsub.TopicInboxUpdated)
	return nil
}
