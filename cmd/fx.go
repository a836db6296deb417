package cmd

import (
	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/config"
	httpsrv "github.com/cinehub/cinehub-service/infra/server/http"
	pubsubadapter "github.com/cinehub/cinehub-service/internal/adapter/pubsub"
	"github.com/cinehub/cinehub-service/internal/domain/registry"
	"github.com/cinehub/cinehub-service/internal/handler/bus"
	httphandler "github.com/cinehub/cinehub-service/internal/handler/http"
	"github.com/cinehub/cinehub-service/internal/notify"
	"github.com/cinehub/cinehub-service/internal/scanner"
	"github.com/cinehub/cinehub-service/internal/service"
	"github.com/cinehub/cinehub-service/internal/store"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideWatermillLogger,
		),
		store.Module,
		notify.Module,
		pubsubadapter.Module,
		registry.Module,
		service.Module,
		scanner.Module,
		bus.Module,
		httphandler.Module,
		httpsrv.Module,
	)
}
