package chat

import (
	"github.com/j0lvera/cbtbot/internal/observe"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/j0lvera/cbtbot/internal/session"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating the chat service
type Params struct {
	fx.In

	Registry  *session.Registry
	Responder *responder.Responder
	Metrics   *observe.Metrics
	Logger    zerolog.Logger
}

// Result of creating the chat service
type Result struct {
	fx.Out

	Service *Service
}

// Provide creates the chat service
func Provide(p Params) Result {
	return Result{
		Service: NewService(p.Registry, p.Responder, p.Metrics, p.Logger),
	}
}

// Module provides the chat service
func Module() fx.Option {
	return fx.Module(
		"chat",
		fx.Provide(
			Provide,
		),
	)
}
