package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/httpapi"
	apimw "github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/logging"
	"github.com/hamed0406/uptimemonitor/internal/notify"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
	"github.com/hamed0406/uptimemonitor/internal/repo/memory"
	"github.com/hamed0406/uptimemonitor/internal/repo/postgres"
	"github.com/hamed0406/uptimemonitor/internal/scheduler"
	"github.com/hamed0406/uptimemonitor/internal/state"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.LogDir, Stdout: cfg.LogStdout, Debug: cfg.LogDebug})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_error", zap.Error(err))
	}
	defer closeStore()

	sched := scheduler.New(
		logger,
		store,
		probe.NewHTTPChecker(cfg.HTTPTimeout),
		state.NewTracker(),
		scheduler.NewDispatcher(logger, buildNotifier(cfg, logger), cfg.NotifyRecipient, cfg.NotifyTimeout),
		clockwork.NewRealClock(),
		cfg.CheckInterval,
		cfg.HTTPTimeout,
		cfg.MaxConcurrentChecks,
	)
	logger.Info("per_monitor_interval_inert",
		zap.Duration("global_interval", cfg.CheckInterval),
		zap.String("note", "interval_seconds on monitors is stored but not used for scheduling"),
	)

	if opts.once {
		sched.RunOnce(ctx)
		logger.Info("single_cycle_complete")
		return
	}

	api := httpapi.NewServer(logger, store, sched)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api_listen_error", zap.Error(err))
		stop()
	}
	<-done
	logger.Info("shutdown_complete")
}

type options struct {
	once bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
	fs.BoolVar(&o.once, "once", false, "run a single check cycle against the store and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.MonitorAdmin, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("store_memory")
		return memory.New(), func() {}, nil
	}
	pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	logger.Info("store_postgres")
	return pg, pg.Close, nil
}

func buildNotifier(cfg config.Config, logger *zap.Logger) notify.Notifier {
	var out notify.Multi
	if m := notify.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From); m != nil {
		out = append(out, m)
	}
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		out = append(out, s)
	}
	if len(out) == 0 {
		logger.Warn("notify_no_transport", zap.String("fallback", "log"))
		return notify.Log{Logger: logger}
	}
	if cfg.NotifyRecipient == "" && cfg.SMTP.Host != "" {
		logger.Warn("notify_no_recipient")
	}
	return out
}
