package responder

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating the responder
type Params struct {
	fx.In

	Replies Replies
	Logger  zerolog.Logger
}

// Result of creating the responder
type Result struct {
	fx.Out

	Responder *Responder
}

// Provide builds the rule table from the configured reply catalogue
func Provide(p Params) Result {
	r := New(p.Replies)

	p.Logger.Debug().
		Int("rules", len(r.rules)).
		Int("quick_actions", len(QuickActions)).
		Msg("responder rule table built")

	return Result{
		Responder: r,
	}
}

// Module provides the responder
func Module() fx.Option {
	return fx.Module(
		"responder",
		fx.Provide(
			Provide,
		),
	)
}
