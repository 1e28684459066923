// Package scheduler fires digest runs from cron expressions evaluated in
// the configured zone.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/clock"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/dispatch"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

const DefaultRunTimeout = 2 * time.Minute

type Runner interface {
	Run(ctx context.Context, kind models.DigestKind) (dispatch.Result, error)
}

type Config struct {
	Daily      string
	Weekly     string
	Monthly    string
	RunTimeout time.Duration
	// CatchUp triggers one daily run on start when today's daily slot has
	// already passed.
	CatchUp bool
}

func DefaultConfig() Config {
	return Config{
		Daily:      "0 9 * * *",
		Weekly:     "0 21 * * SUN",
		Monthly:    "0 18 L * *",
		RunTimeout: DefaultRunTimeout,
		CatchUp:    true,
	}
}

type Scheduler struct {
	runner    Runner
	loc       *time.Location
	clock     clock.Clock
	timeout   time.Duration
	catchUp   bool
	schedules map[models.DigestKind]cron.Schedule
	running   map[models.DigestKind]*atomic.Bool
	pending   map[models.DigestKind]*atomic.Bool
	notifyCh  chan struct{}
	wg        sync.WaitGroup
	log       logx.Logger
}

// New parses every schedule up front so a bad expression fails startup.
func New(runner Runner, zone clock.ZoneProvider, clk clock.Clock, cfg Config, log logx.Logger) (*Scheduler, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}

	p := newParser()
	specs := map[models.DigestKind]string{
		models.DigestDaily:   cfg.Daily,
		models.DigestWeekly:  cfg.Weekly,
		models.DigestMonthly: cfg.Monthly,
	}
	s := &Scheduler{
		runner:    runner,
		loc:       zone.Location(),
		clock:     clk,
		timeout:   cfg.RunTimeout,
		catchUp:   cfg.CatchUp,
		schedules: make(map[models.DigestKind]cron.Schedule, len(specs)),
		running:   make(map[models.DigestKind]*atomic.Bool, len(specs)),
		pending:   make(map[models.DigestKind]*atomic.Bool, len(specs)),
		notifyCh:  make(chan struct{}, 1),
		log:       log.With(logx.String("comp", "scheduler")),
	}
	var errs []error
	for _, kind := range models.DigestKinds {
		sched, err := ParseSpec(p, specs[kind])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s schedule: %w", kind, err))
			continue
		}
		s.schedules[kind] = sched
		s.running[kind] = new(atomic.Bool)
		s.pending[kind] = new(atomic.Bool)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Trigger requests an immediate run of kind. It never blocks; repeated
// calls before the loop picks them up collapse into one run.
func (s *Scheduler) Trigger(kind models.DigestKind) {
	flag, ok := s.pending[kind]
	if !ok {
		return
	}
	flag.Store(true)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Next returns the next activation of kind after t.
func (s *Scheduler) Next(kind models.DigestKind, t time.Time) time.Time {
	sched, ok := s.schedules[kind]
	if !ok {
		return time.Time{}
	}
	return sched.Next(t.In(s.loc))
}

// Start runs until ctx is done, then waits for in-flight runs.
func (s *Scheduler) Start(ctx context.Context) {
	c := cron.New(cron.WithLocation(s.loc))
	now := s.clock.Now()
	for _, kind := range models.DigestKinds {
		c.Schedule(s.schedules[kind], cron.FuncJob(func() { s.fire(ctx, kind) }))
		s.log.Info("digest scheduled", logx.String("kind", kind.String()), logx.Time("next", s.Next(kind, now)))
	}
	c.Start()
	s.log.Info("scheduler started", logx.String("tz", s.loc.String()))

	if s.catchUp && s.dailySlotPassed(now) {
		s.log.Info("daily slot already passed today, catching up")
		s.Trigger(models.DigestDaily)
	}

	for {
		select {
		case <-ctx.Done():
			<-c.Stop().Done()
			s.wg.Wait()
			s.log.Info("scheduler stopped")
			return
		case <-s.notifyCh:
			for _, kind := range models.DigestKinds {
				if !s.pending[kind].Swap(false) {
					continue
				}
				s.wg.Add(1)
				go func(k models.DigestKind) {
					defer s.wg.Done()
					s.fire(ctx, k)
				}(kind)
			}
		}
	}
}

// dailySlotPassed reports whether the first daily activation of today is at
// or before now.
func (s *Scheduler) dailySlotPassed(now time.Time) bool {
	local := now.In(s.loc)
	today := caltime.DateOf(local)
	midnight := caltime.ResolveLenient(today.At(0), s.loc)
	first := s.schedules[models.DigestDaily].Next(midnight.Add(-time.Nanosecond))
	if first.IsZero() || caltime.DateOf(first.In(s.loc)) != today {
		return false
	}
	return !first.After(local)
}

// fire runs one digest unless a run of the same kind is still in flight.
func (s *Scheduler) fire(ctx context.Context, kind models.DigestKind) {
	flag := s.running[kind]
	if !flag.CompareAndSwap(false, true) {
		s.log.Debug("previous run still in progress, dropping trigger", logx.String("kind", kind.String()))
		return
	}
	defer flag.Store(false)

	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.runner.Run(runCtx, kind)
	fields := []logx.Field{
		logx.String("kind", kind.String()),
		logx.String("run_id", res.RunID.String()),
		logx.String("outcome", res.Outcome.String()),
		logx.Duration("took", time.Since(start)),
	}
	if err != nil {
		s.log.Error("digest run failed", append(fields, logx.Err(err))...)
		return
	}
	s.log.Info("digest run finished", fields...)
}
