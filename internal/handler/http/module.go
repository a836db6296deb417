package http

import (
	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/internal/handler/lp"
	"github.com/cinehub/cinehub-service/internal/handler/ws"
	"github.com/cinehub/cinehub-service/internal/notify"
)

var Module = fx.Module("delivery-http",
	fx.Provide(
		NewAPI,
		NewRouter,
		lp.NewLPHandler,
		ws.NewWSHandler,
		func(s *notify.Store) ws.InboxStore { return s },
	),
)
