package pubsub

import (
	"context"

	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/internal/notify"
)

var Module = fx.Module("pubsub",
	fx.Provide(
		NewEventDispatcher,
		func(d EventDispatcher) notify.Sink { return d },
	),
	fx.Invoke(func(lc fx.Lifecycle, d EventDispatcher) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return d.Close()
			},
		})
	}),
)
