package store

import (
	"context"

	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/config"
	"github.com/cinehub/cinehub-service/internal/scanner"
)

var Module = fx.Module("store",
	fx.Provide(
		func(cfg *config.Config) (*CatalogStore, error) {
			return NewCatalogStore(cfg.DB.Path, cfg.DB.MaxOpenConns)
		},
		func(s *CatalogStore) scanner.Catalog { return s },
	),
	fx.Invoke(func(lc fx.Lifecycle, s *CatalogStore) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return s.Close()
			},
		})
	}),
)
