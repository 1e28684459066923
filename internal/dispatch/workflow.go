// Package dispatch drives a single digest run: compute the period, build
// the digest, consult the ledger, send, and record the run.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/clock"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/digest"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

var (
	// ErrPublish wraps a failed send. Nothing is recorded in the ledger.
	ErrPublish = errors.New("publish digest")
	// ErrRecordRun wraps a ledger write that failed after a successful send.
	ErrRecordRun = errors.New("record notification run")
)

// Ledger is the append-only record of digests already sent.
type Ledger interface {
	Exists(ctx context.Context, kind models.DigestKind, start, end caltime.LocalDateTime, zoneID string) (bool, error)
	// Append returns an error wrapping models.ErrDuplicateRun when the
	// (kind, start, end, zone) tuple is already present.
	Append(ctx context.Context, run *models.NotificationRun) error
}

type Renderer interface {
	Render(kind models.DigestKind, start, end caltime.LocalDateTime, items []models.CalendarItem) string
}

type Publisher interface {
	Send(ctx context.Context, text string) error
}

type DigestBuilder interface {
	BuildForPeriod(ctx context.Context, p digest.Period, loc *time.Location) ([]models.CalendarItem, error)
}

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSkipped
	OutcomeSent
	// OutcomeSentUnrecorded: delivered, but the ledger write failed.
	OutcomeSentUnrecorded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSent:
		return "sent"
	case OutcomeSentUnrecorded:
		return "sent_unrecorded"
	default:
		return "failed"
	}
}

type Result struct {
	RunID   uuid.UUID
	Kind    models.DigestKind
	Period  digest.Period
	Items   int
	Outcome Outcome
}

type Deps struct {
	Builder   DigestBuilder
	Ledger    Ledger
	Renderer  Renderer
	Publisher Publisher
	Clock     clock.Clock
	Zone      clock.ZoneProvider
	Log       logx.Logger
}

type Workflow struct {
	builder   DigestBuilder
	ledger    Ledger
	renderer  Renderer
	publisher Publisher
	clock     clock.Clock
	zone      clock.ZoneProvider
	log       logx.Logger
	newID     func() uuid.UUID
}

func NewWorkflow(d Deps) *Workflow {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	return &Workflow{
		builder:   d.Builder,
		ledger:    d.Ledger,
		renderer:  d.Renderer,
		publisher: d.Publisher,
		clock:     clk,
		zone:      d.Zone,
		log:       log.With(logx.String("comp", "dispatch")),
		newID:     uuid.New,
	}
}

// Run executes one dispatch for kind. The returned error is nil for Sent
// and Skipped outcomes.
//
// The ledger check and the append are separate calls; two concurrent runs
// for the same period can both pass the check. Append then rejects the
// second row, but both digests will already have been sent.
func (w *Workflow) Run(ctx context.Context, kind models.DigestKind) (Result, error) {
	res := Result{RunID: w.newID(), Kind: kind, Outcome: OutcomeFailed}
	log := w.log.With(logx.String("run_id", res.RunID.String()), logx.String("kind", kind.String()))

	p, err := w.period(kind)
	if err != nil {
		return res, err
	}
	res.Period = p
	loc := w.zone.Location()
	log = log.With(logx.String("start", p.Start.String()), logx.String("end", p.End.String()))

	if err := ctx.Err(); err != nil {
		return res, err
	}
	items, err := w.builder.BuildForPeriod(ctx, p, loc)
	if err != nil {
		log.Error("build digest failed", logx.Err(err))
		return res, fmt.Errorf("build %s digest: %w", kind, err)
	}
	res.Items = len(items)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	exists, err := w.ledger.Exists(ctx, kind, p.Start, p.End, p.ZoneID)
	if err != nil {
		log.Error("ledger check failed", logx.Err(err))
		return res, fmt.Errorf("check ledger: %w", err)
	}
	if exists {
		res.Outcome = OutcomeSkipped
		log.Info("digest already sent for period, skipping")
		return res, nil
	}

	text := w.renderer.Render(kind, p.Start, p.End, items)

	if err := ctx.Err(); err != nil {
		log.Warn("run cancelled before send", logx.Err(err))
		return res, err
	}
	if err := w.publisher.Send(ctx, text); err != nil {
		log.Error("send digest failed", logx.Err(err))
		return res, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	run := &models.NotificationRun{
		RunID:            res.RunID,
		Kind:             kind,
		PeriodStartLocal: p.Start,
		PeriodEndLocal:   p.End,
		TimeZoneID:       p.ZoneID,
		CreatedAt:        w.clock.Now().UTC(),
	}
	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeSentUnrecorded
		log.Warn("run cancelled after send, run not recorded", logx.Err(err))
		return res, fmt.Errorf("%w: %w", ErrRecordRun, err)
	}
	if err := w.ledger.Append(ctx, run); err != nil {
		if errors.Is(err, models.ErrDuplicateRun) {
			res.Outcome = OutcomeSent
			log.Warn("concurrent run recorded the same period first", logx.Int("items", res.Items))
			return res, nil
		}
		res.Outcome = OutcomeSentUnrecorded
		log.Error("record run failed after send", logx.Err(err))
		return res, fmt.Errorf("%w: %w", ErrRecordRun, err)
	}

	res.Outcome = OutcomeSent
	log.Info("digest sent", logx.Int("items", res.Items))
	return res, nil
}

// Preview builds and renders the digest for kind without touching the
// ledger or the publisher.
func (w *Workflow) Preview(ctx context.Context, kind models.DigestKind) (digest.Period, string, error) {
	p, err := w.period(kind)
	if err != nil {
		return digest.Period{}, "", err
	}
	if err := ctx.Err(); err != nil {
		return p, "", err
	}
	items, err := w.builder.BuildForPeriod(ctx, p, w.zone.Location())
	if err != nil {
		return p, "", fmt.Errorf("build %s digest: %w", kind, err)
	}
	return p, w.renderer.Render(kind, p.Start, p.End, items), nil
}

func (w *Workflow) period(kind models.DigestKind) (digest.Period, error) {
	return digest.ComputePeriod(kind, w.clock.Now(), w.zone.ZoneID(), w.zone.Location())
}
