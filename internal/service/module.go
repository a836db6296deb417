package service

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/config"
	"github.com/cinehub/cinehub-service/internal/domain/registry"
)

var Module = fx.Module("service",
	fx.Provide(
		fx.Annotate(
			func(hub registry.Hubber, cfg *config.Config, log *slog.Logger) *DeliveryService {
				return NewDeliveryService(hub, cfg.Push.SessionBuffer, log)
			},
			fx.As(new(Deliverer)),
		),
	),
)
