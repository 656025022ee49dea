package observe

import (
	"context"

	"github.com/j0lvera/cbtbot/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating the metrics
type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

// Result of creating the metrics
type Result struct {
	fx.Out

	Metrics *Metrics
}

// New installs the Prometheus-backed meter provider and creates the instruments
func New(lc fx.Lifecycle, p Params) (Result, error) {
	mp, err := InitProvider(ProviderConfig{
		ServiceName:    p.Config.ServiceName,
		ServiceVersion: p.Config.ServiceVersion,
	})
	if err != nil {
		return Result{}, err
	}

	m, err := NewMetrics(mp)
	if err != nil {
		return Result{}, err
	}

	lc.Append(
		fx.Hook{
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("flushing metrics")
				return Shutdown(ctx, mp)
			},
		},
	)

	return Result{Metrics: m}, nil
}

// Module provides the metrics
func Module() fx.Option {
	return fx.Module(
		"observe",
		fx.Provide(
			New,
		),
	)
}
