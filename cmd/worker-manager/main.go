// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"assessment-workers/internal/assessment"
	"assessment-workers/internal/common/camunda"
	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/database"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/observability"
	analyze "assessment-workers/internal/workers/assessment/analyze-job-requirements"
	generate "assessment-workers/internal/workers/assessment/generate-test-questions"
	"assessment-workers/pkg/registry"
)

const shutdownTimeout = 30 * time.Second

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker manager: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()
	if err := obs.EnableTracing(observability.TracingConfig{
		Enabled:        cfg.Observability.Tracing.Enabled,
		JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Observability.Tracing.SampleRatio,
	}); err != nil {
		return err
	}

	// --- Assessment engine and activity registry ---
	engine, err := assessment.NewFromConfig(cfg.Assessment, log)
	if err != nil {
		return fmt.Errorf("assessment engine: %w", err)
	}
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	zapLog.Info("Assessment engine ready",
		zap.Int("bankVersion", engine.Bank().Version()),
		zap.Int("totalQuestions", engine.Settings().TotalQuestions),
		zap.Bool("seeded", cfg.Assessment.Seed != nil),
	)

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		return fmt.Errorf("zeebe client: %w", err)
	}
	defer zeebe.Close()
	zeebeClient := zeebe.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	checks := []readinessCheck{{name: "zeebe", probe: zeebe.HealthCheck}}

	// --- Init Redis with retry, only when the blueprint cache is on ---
	var cache *database.RedisClient
	if cfg.Assessment.Cache.Enabled {
		err = retryWithBackoff(ctx, func() error {
			var err error
			if cache, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			return cache.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer cache.Close()
		checks = append(checks, readinessCheck{name: "redis", probe: cache.Ping})
		zapLog.Info("Redis connected successfully")
	}

	// --- Register workers ---
	var workers []*camunda.CamundaWorker

	analyzeCfg := analyze.ConfigFromApp(cfg)
	if analyzeCfg.Enabled {
		handler, err := analyze.NewHandler(analyze.HandlerOptions{
			Config:   analyzeCfg,
			Engine:   engine,
			Cache:    cache,
			Registry: reg,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		workers = append(workers, startWorker(zeebeClient, analyze.TaskType, analyzeCfg.MaxJobsActive, analyzeCfg.Timeout, handler, obs, zapLog))
	}

	generateCfg := generate.ConfigFromApp(cfg)
	if generateCfg.Enabled {
		handler, err := generate.NewHandler(generate.HandlerOptions{
			Config:   generateCfg,
			Engine:   engine,
			Registry: reg,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		workers = append(workers, startWorker(zeebeClient, generate.TaskType, generateCfg.MaxJobsActive, generateCfg.Timeout, handler, obs, zapLog))
	}

	for _, key := range []string{analyze.ConfigKey, generate.ConfigKey} {
		if !config.IsWorkerEnabled(cfg, key) {
			zapLog.Info("Worker disabled by configuration", zap.String("worker", key))
		}
	}
	if len(workers) == 0 {
		zapLog.Warn("No workers enabled")
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Observability.MetricsAddr,
		Handler:           newRouter(zapLog, checks...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health/metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping workers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		for _, w := range workers {
			w.Stop(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	zapLog.Info("Worker manager stopped gracefully")
	return nil
}

func startWorker(client zbc.Client, taskType string, maxJobsActive int, timeout time.Duration, handler camunda.JobHandler, observer camunda.JobObserver, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(client, camunda.WorkerOptions{
		TaskType:      taskType,
		MaxJobsActive: maxJobsActive,
		Timeout:       timeout,
		Observer:      observer,
	}, handler, log)
	w.Start()
	return w
}
