// Package bot runs the Telegram update loop for the read-only commands.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/bot/handlers"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
	log      logx.Logger
}

func New(api *tgbotapi.BotAPI, h *handlers.Handlers, log logx.Logger) *Bot {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Bot{api: api, handlers: h, log: log.With(logx.String("comp", "bot"))}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("authorized", logx.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	b.handlers.HandleCommand(ctx, update.Message)
}
