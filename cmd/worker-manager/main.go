// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "contact-discovery/internal/common/aws"
	"contact-discovery/internal/common/camunda"
	"contact-discovery/internal/common/config"
	"contact-discovery/internal/common/database"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/common/observability"
	"contact-discovery/internal/discovery/contacts"
	"contact-discovery/internal/discovery/enhance"
	"contact-discovery/internal/discovery/generation"
	"contact-discovery/internal/discovery/templates"
	"contact-discovery/pkg/registry"

	gq "contact-discovery/internal/workers/discovery/generate-queries"
	sc "contact-discovery/internal/workers/discovery/score-contacts"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
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
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Activity Registry ---
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("activity registry unavailable", zap.Error(err), zap.String("path", cfg.Registry.Path))
	} else {
		zapLog.Info("activity registry loaded",
			zap.String("version", reg.Version),
			zap.Strings("taskTypes", reg.TaskTypes()),
		)
	}

	// --- Build the generation pipeline ---
	templateRepo := templates.NewPostgresRepository(pg.GetDB())

	var templateCache *templates.Cache
	if cfg.Generation.CacheEnabled {
		templateCache = templates.NewCache(
			redis.GetClient(),
			time.Duration(cfg.Generation.TemplateCacheTTLSec)*time.Second,
		)
	}

	store := templates.NewStore(templateRepo, templateCache, cfg.Generation.ConfidenceAlpha, log)

	var enhancer enhance.Enhancer
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		enhancer = enhance.NewHTTPEnhancer(cfg.AI, log)
		zapLog.Info("AI query enhancement enabled", zap.String("model", cfg.AI.Model))
	} else {
		zapLog.Info("AI query enhancement disabled, running template-only")
	}

	var notifier generation.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		var sesClient *awsclient.SESClient
		var snsClient *awsclient.SNSClient

		if cfg.Notifications.Email.Enabled {
			if sesClient, err = awsclient.NewSESClient(ctx, cfg.Notifications.AWS.Region); err != nil {
				zapLog.Fatal("SES client failed", zap.Error(err))
			}
		}
		if cfg.Notifications.SMS.Enabled {
			if snsClient, err = awsclient.NewSNSClient(ctx, cfg.Notifications.AWS.Region); err != nil {
				zapLog.Fatal("SNS client failed", zap.Error(err))
			}
		}
		notifier = generation.NewAWSNotifier(sesClient, snsClient, cfg.Notifications, log)
		zapLog.Info("batch notifications enabled")
	}

	service := generation.NewService(
		store,
		enhancer,
		generation.NewPostgresQueryRepository(pg.GetDB()),
		generation.NewPostgresPerformanceLogRepository(pg.GetDB()),
		notifier,
		obs,
		generation.ServiceConfig{
			Generation: cfg.Generation,
			AI:         cfg.AI,
			Scoring:    cfg.Scoring,
		},
		log,
	)

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, gq.TaskType) {
		workerCfg := config.GetWorkerConfig(cfg, gq.TaskType)
		handler := gq.NewHandler(gq.LoadConfig(workerCfg), service, log)
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(),
			gq.TaskType,
			workerCfg.MaxJobsActive,
			config.GetDuration(workerCfg.Timeout),
			handler.Handle,
			zapLog,
		))
	}

	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		workerCfg := config.GetWorkerConfig(cfg, sc.TaskType)
		scorer := contacts.NewConfidenceScorer(cfg.Scoring.Contact, log)
		indexer := contacts.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.ContactIndex, log)
		handler := sc.NewHandler(sc.LoadConfig(workerCfg), scorer, indexer, log)
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(),
			sc.TaskType,
			workerCfg.MaxJobsActive,
			config.GetDuration(workerCfg.Timeout),
			handler.Handle,
			zapLog,
		))
	}

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
