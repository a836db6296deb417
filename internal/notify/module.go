package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/internal/idgen"
)

var Module = fx.Module("notify",
	fx.Provide(
		idgen.New,
		func(ids idgen.Generator, sink Sink, log *slog.Logger) *Store {
			return NewStore(ids, sink, log)
		},
	),
)
