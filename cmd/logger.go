package cmd

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/fx"

	"github.com/cinehub/cinehub-service/config"
)

// ProvideLogger wires slog through the OpenTelemetry log bridge with a
// stdout exporter, and installs it as the process default.
func ProvideLogger(lc fx.Lifecycle, cfg *config.Config) (*slog.Logger, error) {
	exporter, err := stdoutlog.New()
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	handler := otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider))
	logger := slog.New(&leveledHandler{Handler: handler, min: cfg.Log.LevelVar()})
	slog.SetDefault(logger)

	return logger, nil
}

// leveledHandler gates records below the configured level before they
// reach the bridge, which otherwise forwards everything. The level is a
// Leveler so config-file reloads take effect on the running logger.
type leveledHandler struct {
	slog.Handler
	min slog.Leveler
}

func (h *leveledHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithAttrs(attrs), min: h.min}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithGroup(name), min: h.min}
}

func ProvideWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger)
}
