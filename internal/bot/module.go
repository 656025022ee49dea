package bot

import (
	"context"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/cbtbot/internal/chat"
	"github.com/j0lvera/cbtbot/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config *config.Config
	Chat   *chat.Service
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	// Bot is nil when the Telegram host is disabled
	Bot *tbot.Bot
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	log := p.Logger

	if p.Config.TelegramToken == "" {
		log.Info().Msg("telegram token not set, telegram bot disabled")
		return Result{}, nil
	}

	h := NewHandler(p.Chat, p.Config.TypingDelay, log)

	opts := []tbot.Option{
		tbot.WithDefaultHandler(
			func(ctx context.Context, tg *tbot.Bot, update *models.Update) {
				h.handleUpdate(ctx, tg, update)
			},
		),
	}

	tg, err := tbot.New(p.Config.TelegramToken, opts...)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				log.Info().Msg("starting telegram bot...")
				go func() {
					defer close(done)
					tg.Start(ctx)
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				cancel()
				select {
				case <-done:
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
				return nil
			},
		},
	)

	return Result{Bot: tg}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}
