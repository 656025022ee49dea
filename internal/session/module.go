package session

import (
	"context"
	"time"

	"github.com/j0lvera/cbtbot/internal/config"
	"github.com/j0lvera/cbtbot/internal/observe"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating the session registry
type Params struct {
	fx.In

	Config    *config.Config
	Responder *responder.Responder
	Metrics   *observe.Metrics
	Logger    zerolog.Logger
}

// Result of creating the session registry
type Result struct {
	fx.Out

	Registry *Registry
}

// NewEngineFactory returns a constructor for engines that reply with r and
// greet with the configured welcome entry.
func NewEngineFactory(r Replier, replies responder.Replies) func() *Engine {
	welcome := replies.WithDefaults(responder.DefaultReplies).Welcome.String()
	return func() *Engine {
		return New(r, WithWelcome(welcome), WithTypedBuffer())
	}
}

// Provide creates the registry and schedules idle-session cleanup
func Provide(lc fx.Lifecycle, p Params) Result {
	log := p.Logger

	registry := NewRegistry(
		NewEngineFactory(p.Responder, p.Config.Replies),
		WithOnCreate(func(key string) {
			p.Metrics.SessionOpened(context.Background())
			log.Debug().Str("session", key).Msg("session created")
		}),
		WithOnEvict(func(key string) {
			p.Metrics.SessionClosed(context.Background())
			log.Debug().Str("session", key).Msg("session evicted")
		}),
	)

	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					defer close(done)
					ticker := time.NewTicker(p.Config.SessionCleanupInterval)
					defer ticker.Stop()
					for {
						select {
						case <-ticker.C:
							if n := registry.Cleanup(p.Config.SessionIdleTTL); n > 0 {
								log.Info().
									Int("evicted", n).
									Int("remaining", registry.Len()).
									Msg("idle sessions evicted")
							}
						case <-stop:
							return
						}
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				close(stop)
				select {
				case <-done:
				case <-ctx.Done():
					return ctx.Err()
				}
				log.Info().Int("sessions", registry.Len()).Msg("session registry stopped")
				return nil
			},
		},
	)

	return Result{Registry: registry}
}

// Module provides the session registry
func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(
			Provide,
		),
	)
}
