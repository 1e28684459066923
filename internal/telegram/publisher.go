// Package telegram delivers rendered digests to the configured chat.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/format"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
)

// Sender is the part of *tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Target is a numeric chat id or a public @channel name.
type Target struct {
	ChatID  int64
	Channel string
}

// ParseTarget accepts "-1001234567890" or "@channel".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("telegram target chat is empty")
	}
	if strings.HasPrefix(s, "@") {
		if len(s) == 1 {
			return Target{}, fmt.Errorf("telegram target %q: missing channel name", s)
		}
		return Target{Channel: s}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Target{}, fmt.Errorf("telegram target %q: %w", s, err)
	}
	return Target{ChatID: id}, nil
}

func (t Target) String() string {
	if t.Channel != "" {
		return t.Channel
	}
	return strconv.FormatInt(t.ChatID, 10)
}

type Publisher struct {
	api     Sender
	target  Target
	limiter *rate.Limiter
	log     logx.Logger
}

// NewPublisher paces sends at ratePerSec messages per second; values below
// one are raised to one.
func NewPublisher(api Sender, target Target, ratePerSec int, log logx.Logger) *Publisher {
	if ratePerSec < 1 {
		ratePerSec = 1
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Publisher{
		api:     api,
		target:  target,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		log:     log.With(logx.String("comp", "telegram"), logx.String("chat", target.String())),
	}
}

// Send delivers text, split into as many messages as Telegram's length
// limit requires. It stops at the first failed part.
func (p *Publisher) Send(ctx context.Context, text string) error {
	parts := format.Chunk(text, format.MaxMessageLen)
	for i, part := range parts {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		parsed := format.ParseMarkdown(part)
		msg := p.message(parsed.Text)
		msg.Entities = parsed.Entities
		msg.DisableWebPagePreview = true

		sent, err := p.api.Send(msg)
		if err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
		p.log.Debug("message sent", logx.Int("part", i+1), logx.Int("parts", len(parts)), logx.Int("msg_id", sent.MessageID))
	}
	return nil
}

func (p *Publisher) message(text string) tgbotapi.MessageConfig {
	if p.target.Channel != "" {
		return tgbotapi.NewMessageToChannel(p.target.Channel, text)
	}
	return tgbotapi.NewMessage(p.target.ChatID, text)
}
