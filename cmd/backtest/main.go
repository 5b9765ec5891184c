package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"RocSentinel/internal/collector"
	"RocSentinel/internal/config"
	"RocSentinel/internal/logger"
	"RocSentinel/internal/metrics"
	"RocSentinel/internal/notifier"
	"RocSentinel/internal/recorder"
	"RocSentinel/internal/runner"
	"RocSentinel/internal/scheduler"
)

func main() {
	boot := logger.New("info")

	if err := config.LoadEnvFiles(".env.local", ".env"); err != nil {
		boot.Fatal().Err(err).Msg("load env files")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("config validation")
	}

	log := logger.New(cfg.Log.Level)
	log.Info().Str("config", cfgPath).Msg("RocSentinel starting")

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Kind == config.SourceCSV {
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVPath)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Str("symbol", cfg.DataSource.Symbol).Msg("data source")
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Days, log)

	// Init notifiers
	console := notifier.NewConsole(os.Stdout)
	notifiers := notifier.Multi{console}
	if cfg.TelegramEnabled() {
		notifiers = append(notifiers, notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log))
	}

	// Init recorder
	rec := openRecorder(cfg.Database.SQLitePath, log)
	defer rec.Close()

	run := runner.New(col, cfg.Params(), notifiers, rec, log)
	run.Live = console

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Schedule.Cron == "" {
		if _, err := run.Run(ctx); err != nil {
			log.Error().Err(err).Msg("backtest failed")
			rec.Close()
			os.Exit(1)
		}
		return
	}

	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr, log)
		defer srv.Close()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics up")
	}

	sched := scheduler.NewScheduler(ctx, run, log)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running backtest now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Error().Err(err).Msg("startup backtest failed")
			}
		}()
	}

	log.Info().Str("cron", cfg.Schedule.Cron).Msg("RocSentinel is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
}

func openRecorder(path string, log zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
