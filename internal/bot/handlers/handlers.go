package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/clock"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/digest"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/format"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

const upcomingLimit = 20

const (
	textDenied  = "⛔ Нет доступа"
	textUnknown = "Неизвестная команда, список команд: /help"
	textFailed  = "⚠️ Не удалось получить данные, попробуйте позже"
	textUsage   = "Укажите тип дайджеста: daily, weekly или monthly"
)

// Sender is the part of *tgbotapi.BotAPI used for replies.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Timeline interface {
	Upcoming(ctx context.Context, now time.Time, loc *time.Location, limit int) ([]recurrence.Occurrence, error)
	UpcomingBirthdays(ctx context.Context, now time.Time, loc *time.Location, limit int) ([]recurrence.Occurrence, error)
}

type Previewer interface {
	Preview(ctx context.Context, kind models.DigestKind) (digest.Period, string, error)
}

type Triggerer interface {
	Trigger(kind models.DigestKind)
}

type Deps struct {
	Timeline  Timeline
	Previewer Previewer
	Trigger   Triggerer
	Clock     clock.Clock
	Zone      clock.ZoneProvider
}

type Handlers struct {
	api     Sender
	deps    Deps
	allowed map[int64]struct{}
	log     logx.Logger
}

// New builds the command handlers. Only users in allowedUserIDs may run
// commands; an empty list locks everyone out.
func New(api Sender, deps Deps, allowedUserIDs []int64, log logx.Logger) *Handlers {
	if log.IsZero() {
		log = logx.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	allowed := make(map[int64]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}
	return &Handlers{api: api, deps: deps, allowed: allowed, log: log.With(logx.String("comp", "handlers"))}
}

func (h *Handlers) IsAllowed(userID int64) bool {
	_, ok := h.allowed[userID]
	return ok
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	text := h.Reply(ctx, msg.From.ID, msg.Command(), msg.CommandArguments())
	h.sendMessage(ctx, msg.Chat.ID, text)
}

// Reply returns the answer to a command without sending it.
func (h *Handlers) Reply(ctx context.Context, userID int64, command, args string) string {
	if !h.IsAllowed(userID) {
		h.log.Warn("command from unknown user", logx.Int64("user_id", userID), logx.String("command", command))
		return textDenied
	}

	switch command {
	case "start", "help":
		return helpText
	case "upcoming", "event_list":
		return h.upcoming(ctx)
	case "birthdays", "birthday_list":
		return h.birthdays(ctx)
	case "digest", "digest_test":
		return h.preview(ctx, args)
	case "digest_send":
		return h.trigger(args)
	default:
		return textUnknown
	}
}

const helpText = `👋 **SnakeFrog Calendar**

/upcoming — ближайшие события и дни рождения
/birthdays — ближайшие дни рождения
/digest daily|weekly|monthly — предпросмотр дайджеста
/digest\_send daily|weekly|monthly — отправить дайджест в канал
/help — эта справка`

func (h *Handlers) upcoming(ctx context.Context) string {
	loc := h.deps.Zone.Location()
	occ, err := h.deps.Timeline.Upcoming(ctx, h.deps.Clock.Now(), loc, upcomingLimit)
	if err != nil {
		h.log.Error("load upcoming failed", logx.Err(err))
		return textFailed
	}
	return format.FormatUpcoming(occ, loc)
}

func (h *Handlers) birthdays(ctx context.Context) string {
	loc := h.deps.Zone.Location()
	occ, err := h.deps.Timeline.UpcomingBirthdays(ctx, h.deps.Clock.Now(), loc, upcomingLimit)
	if err != nil {
		h.log.Error("load birthdays failed", logx.Err(err))
		return textFailed
	}
	return format.FormatBirthdays(occ, loc)
}

func (h *Handlers) preview(ctx context.Context, args string) string {
	kind, err := parseKind(args)
	if err != nil {
		return textUsage
	}
	_, text, err := h.deps.Previewer.Preview(ctx, kind)
	if err != nil {
		h.log.Error("digest preview failed", logx.String("kind", kind.String()), logx.Err(err))
		return textFailed
	}
	return text
}

func (h *Handlers) trigger(args string) string {
	kind, err := parseKind(args)
	if err != nil {
		return textUsage
	}
	if h.deps.Trigger == nil {
		return textFailed
	}
	h.deps.Trigger.Trigger(kind)
	return "✅ Дайджест поставлен в очередь: " + kind.String()
}

func parseKind(args string) (models.DigestKind, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return models.DigestDaily, nil
	}
	kind, err := models.ParseDigestKind(strings.Fields(args)[0])
	if err != nil {
		return 0, errors.New(textUsage)
	}
	return kind, nil
}

func (h *Handlers) sendMessage(ctx context.Context, chatID int64, text string) {
	for _, part := range format.Chunk(text, format.MaxMessageLen) {
		if ctx.Err() != nil {
			return
		}
		parsed := format.ParseMarkdown(part)
		msg := tgbotapi.NewMessage(chatID, parsed.Text)
		msg.Entities = parsed.Entities
		if _, err := h.api.Send(msg); err != nil {
			h.log.Error("send reply failed", logx.Int64("chat_id", chatID), logx.Err(err))
			return
		}
	}
}
