package scanner

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/config"
	"github.com/cinehub/cinehub-service/internal/notify"
)

var Module = fx.Module("scanner",
	fx.Provide(
		func(cfg *config.Config, log *slog.Logger) *Guard {
			return NewGuard(cfg.Scanner.BreakerCooldown, uint64(cfg.Scanner.MaxRetries), log)
		},
		func(catalog Catalog, inbox *notify.Store, guard *Guard, cfg *config.Config, log *slog.Logger) *Scanner {
			return New(catalog, inbox, guard, Config{
				UpcomingSpec:   cfg.Scanner.UpcomingSpec,
				DailySpec:      cfg.Scanner.DailySpec,
				HealthSpec:     cfg.Scanner.HealthSpec,
				UpcomingWindow: cfg.Scanner.UpcomingWindow,
				QueryTimeout:   cfg.Scanner.QueryTimeout,
			}, log)
		},
	),
	fx.Invoke(func(lc fx.Lifecycle, s *Scanner) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				// Prime the connectivity breaker before the first tick.
				_ = s.ProbeHealth(ctx)
				return s.Start()
			},
			OnStop: func(ctx context.Context) error {
				s.Stop()
				return nil
			},
		})
	}),
)
