package main

import (
	"github.com/j0lvera/cbtbot/internal/bot"
	"github.com/j0lvera/cbtbot/internal/chat"
	"github.com/j0lvera/cbtbot/internal/config"
	"github.com/j0lvera/cbtbot/internal/log"
	"github.com/j0lvera/cbtbot/internal/observe"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/j0lvera/cbtbot/internal/session"
	"github.com/j0lvera/cbtbot/internal/web"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		fx.WithLogger(log.NewEventLogger),
		config.Module(),
		log.Module(),
		observe.Module(),
		responder.Module(),
		session.Module(),
		chat.Module(),
		bot.Module(),
		web.Module(),
	).Run()
}
