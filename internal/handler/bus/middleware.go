package bus

import (
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// LoggingMiddleware reports handler latency and failures at debug level.
func LoggingMiddleware(log *slog.Logger) message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			start := time.Now()
			out, err := next(msg)
			if err != nil {
				log.Error("delivery handler failed",
					"msg_id", msg.UUID,
					"took", time.Since(start),
					"error", err)
				return out, err
			}
			log.Debug("delivery handler done",
				"msg_id", msg.UUID,
				"took", time.Since(start))
			return out, nil
		}
	}
}
