package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/bot"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/bot/handlers"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/clock"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/config"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/digest"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/dispatch"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/format"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/scheduler"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logx.New(logx.Config{}).Error("failed to load config", logx.Err(err))
		os.Exit(1)
	}

	log := logx.New(logx.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped with error", logx.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logx.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zone, err := clock.NewStaticZone(cfg.TimeZone)
	if err != nil {
		return err
	}
	clk := clock.Real{}

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	target, err := telegram.ParseTarget(cfg.Telegram.TargetChat)
	if err != nil {
		return err
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}

	builder := digest.NewBuilder(st.Events, st.Birthdays, st.Attachments, log)
	workflow := dispatch.NewWorkflow(dispatch.Deps{
		Builder:   builder,
		Ledger:    st.Ledger,
		Renderer:  format.DigestRenderer{},
		Publisher: telegram.NewPublisher(api, target, cfg.Telegram.SendRatePerSec, log),
		Clock:     clk,
		Zone:      zone,
		Log:       log,
	})

	sched, err := scheduler.New(workflow, zone, clk, scheduler.Config{
		Daily:      cfg.Schedule.Daily,
		Weekly:     cfg.Schedule.Weekly,
		Monthly:    cfg.Schedule.Monthly,
		RunTimeout: cfg.Schedule.RunTimeout,
		CatchUp:    cfg.Schedule.CatchUpOnStart,
	}, log)
	if err != nil {
		return err
	}

	h := handlers.New(api, handlers.Deps{
		Timeline:  builder,
		Previewer: workflow,
		Trigger:   sched,
		Clock:     clk,
		Zone:      zone,
	}, cfg.Telegram.AllowedUserIDs, log)

	log.Info("starting",
		logx.String("tz", zone.ZoneID()),
		logx.String("storage", cfg.Storage.Driver),
		logx.String("target", target.String()),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Start(ctx)
	}()

	err = bot.New(api, h, log).Start(ctx)
	stop()
	wg.Wait()
	log.Info("shut down")
	return err
}
