package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/config"
	"github.com/YesAndBack/TakeWaterBot/internal/domain"
	"github.com/YesAndBack/TakeWaterBot/internal/reminder"
	"github.com/YesAndBack/TakeWaterBot/internal/scheduler"
	"github.com/YesAndBack/TakeWaterBot/internal/settle"
	"github.com/YesAndBack/TakeWaterBot/internal/sheet"
	"github.com/YesAndBack/TakeWaterBot/internal/store"
	"github.com/YesAndBack/TakeWaterBot/internal/telegram"
	"github.com/YesAndBack/TakeWaterBot/internal/tracker"
)

const settleJobLabel = "daily-settlement"

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	history *store.History
	sched   *scheduler.Scheduler
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"working","message":"Water Reminder Bot is running"}`))
	})
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting water reminder bot",
		zap.String("tz", a.cfg.Timezone),
		zap.String("http", a.cfg.HTTPAddr),
	)

	loc, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", a.cfg.Timezone, err)
	}
	now := func() time.Time { return time.Now().In(loc) }

	history, err := store.Open(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.history = history
	a.log.Info("sqlite ready")

	workbook := sheet.New(a.cfg.WorkbookPath, a.log)
	trk := tracker.New(a.cfg.DefaultNorm, now, a.log)
	settler := settle.New(trk, settle.MultiSink{workbook, history}, a.log)
	a.router = telegram.NewRouter(a.bot, a.log, trk, history, settler, now)
	dispatcher := reminder.NewDispatcher(trk, a.router, a.log)

	a.sched = scheduler.New(loc, a.log)
	if err := a.registerJobs(dispatcher, settler); err != nil {
		return err
	}
	a.sched.Start()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// registerJobs defines the daily job set: one reminder per configured time plus
// the settlement job. Labels are the trigger times, so a duplicated config
// entry replaces rather than double-fires.
func (a *App) registerJobs(dispatcher *reminder.Dispatcher, settler *settle.Settler) error {
	for _, ts := range a.cfg.ReminderTimes {
		c, err := domain.ParseClock(ts)
		if err != nil {
			return fmt.Errorf("bad reminder time %q: %w", ts, err)
		}
		label := c.String()
		if err := a.sched.Register(label, c, func() { dispatcher.Run(label) }); err != nil {
			return err
		}
	}

	c, err := domain.ParseClock(a.cfg.SettleTime)
	if err != nil {
		return fmt.Errorf("bad settle time %q: %w", a.cfg.SettleTime, err)
	}
	return a.sched.Register(settleJobLabel, c, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		settler.Run(runCtx)
	})
}

// shutdown stops trigger detection, waits for in-flight jobs, then releases
// the HTTP server and the store.
func (a *App) shutdown() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.history != nil {
		_ = a.history.Close()
	}
}
