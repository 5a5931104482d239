package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/config"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/connections"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/logger"
	temporal "github.com/BondarenkoVyacheslav/smartfin-sync/internal/providers/temporal"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/ratelimit"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/store"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/valuation"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/venues"
	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	queues     = flag.String("queues", "", "Comma-separated task queues to serve, defaults to all")
)

// taskQueues resolves the queues this process serves. By default a worker
// serves the user fan-out queue plus every venue queue; splitting venues
// across processes is a deployment choice, not a code change.
func taskQueues() []string {
	if *queues == "" {
		return append([]string{workflows.UserTaskQueue}, connections.TaskQueues()...)
	}
	var out []string
	for _, q := range strings.Split(*queues, ",") {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadWorkerSyncConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "worker-sync",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Sync Worker")

	// Connect to database
	db, err := store.Open(cfg.Database, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	dataStore := store.NewPGStore(db)
	logger.Info("Connected to database")

	// Connect to redis for distributed venue rate limiting
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	logger.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize adapters and venue infrastructure
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(30 * time.Second)
	limiter := ratelimit.NewLimiter(cfg.Venues.RateLimits, redisClient, clock)

	venueDeps := venues.Deps{
		HTTP:    httpClient,
		Clock:   clock,
		Limiter: limiter,
		Config:  cfg.Venues,
	}

	// Initialize enumerator, valuation engine and activity executor
	enumerator := connections.NewEnumerator(dataStore)
	valuationEngine := valuation.NewEngine(dataStore)
	executor := workflows.NewExecutor(dataStore, enumerator, valuationEngine, adapter.NewActivity(), venueDeps, cfg.Sync.ActivityLimit)

	// Create worker core instance
	workerCore := workflows.NewWorkerCore(executor, workflows.WorkerCoreConfigFrom(cfg.Sync))

	// Connect to Temporal
	temporalClient, err := temporal.NewClient(cfg.Temporal)
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	sentryInterceptor := temporal.NewSentryActivityInterceptor()
	workerOptions := worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
		WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
		MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
		Interceptors: []interceptor.WorkerInterceptor{
			sentryInterceptor,
		},
	}

	// One worker per task queue. Every worker registers the full workflow and
	// activity set; Temporal routes work by queue, so a venue worker only ever
	// receives SyncConnection runs for its venue.
	var workers []worker.Worker
	for _, queue := range taskQueues() {
		w := worker.New(temporalClient, queue, workerOptions)

		w.RegisterWorkflow(workerCore.SyncUser)
		w.RegisterWorkflow(workerCore.SyncConnection)

		w.RegisterActivity(executor.ListUserConnections)
		w.RegisterActivity(executor.FetchSnapshot)
		w.RegisterActivity(executor.PersistSnapshot)
		w.RegisterActivity(executor.AdvanceCursor)
		w.RegisterActivity(executor.ComputeUserValuations)

		if err := w.Start(); err != nil {
			logger.Fatal("Failed to start worker", zap.Error(err), zap.String("task_queue", queue))
		}
		workers = append(workers, w)
		logger.Info("Worker started", zap.String("task_queue", queue))
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	for _, w := range workers {
		w.Stop()
	}
	logger.Info("Sync worker stopped")
}
