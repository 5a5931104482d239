package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/connections"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	temporal "github.com/BondarenkoVyacheslav/smartfin-sync/internal/providers/temporal"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/scheduler"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	runOnce    = flag.Bool("once", false, "Trigger one sync fan-out and exit instead of running the cron loop")
	runDate    = flag.String("date", "", "Sync date (YYYY-MM-DD) for -once, defaults to today UTC")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadSchedulerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context canceled on shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "scheduler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Scheduler")

	// Connect to database
	db, err := store.Open(cfg.Database, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	dataStore := store.NewPGStore(db)
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize connection enumerator
	enumerator := connections.NewEnumerator(dataStore)

	// Connect to redis for the per-date scheduler lock
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	logger.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr))

	// Connect to Temporal
	temporalClient, err := temporal.NewClient(cfg.Temporal)
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	clock := adapter.NewClock()
	syncScheduler := scheduler.New(cfg.Scheduler, enumerator, redisClient, clock, temporalClient)

	if *runOnce {
		date := *runDate
		if date == "" {
			date = clock.Now().UTC().Format(workflows.DateLayout)
		}
		if _, err := time.Parse(workflows.DateLayout, date); err != nil {
			logger.Fatal("Invalid -date value", zap.Error(err), zap.String("date", date))
		}
		if err := syncScheduler.RunOnce(ctx, date); err != nil {
			logger.Fatal("Sync fan-out failed", zap.Error(err), zap.String("date", date))
		}
		logger.Info("Sync fan-out triggered", zap.String("date", date))
		return
	}

	if err := syncScheduler.Run(ctx); err != nil {
		logger.Fatal("Scheduler failed", zap.Error(err))
	}
	logger.Info("Scheduler stopped")
}
