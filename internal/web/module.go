package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/j0lvera/cbtbot/internal/chat"
	"github.com/j0lvera/cbtbot/internal/config"
	"github.com/j0lvera/cbtbot/internal/observe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config  *config.Config
	Chat    *chat.Service
	Metrics *observe.Metrics
	Logger  zerolog.Logger
}

type Result struct {
	fx.Out

	// Server is nil when the web host is disabled
	Server *Server
}

func New(lc fx.Lifecycle, p Params) Result {
	log := p.Logger

	if p.Config.HTTPAddr == "" {
		log.Info().Msg("http address not set, web chat disabled")
		return Result{}
	}

	s := NewServer(p.Chat, p.Metrics, log, Options{
		AllowedOrigins: p.Config.AllowedOrigins,
		CookieSecure:   p.Config.CookieSecure,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         p.Config.HTTPAddr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return err
				}
				log.Info().Str("addr", ln.Addr().String()).Msg("starting web chat...")
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("web server stopped unexpectedly")
					}
				}()
				s.SetReady(true)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("stopping web chat...")
				s.SetReady(false)
				return srv.Shutdown(ctx)
			},
		},
	)

	return Result{Server: s}
}

func Module() fx.Option {
	return fx.Module(
		"web",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(s *Server) {},
		),
	)
}
