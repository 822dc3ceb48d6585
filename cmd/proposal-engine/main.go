// cmd/proposal-engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"proposal-engine/internal/api"
	"proposal-engine/internal/archive"
	"proposal-engine/internal/catalog"
	"proposal-engine/internal/common/config"
	"proposal-engine/internal/common/database"
	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/common/observability"
	"proposal-engine/internal/compliance"
	"proposal-engine/internal/extraction"
	"proposal-engine/internal/models"
	"proposal-engine/internal/notify"
	"proposal-engine/internal/pipeline"
	"proposal-engine/internal/pricing"
	"proposal-engine/internal/risk"
	"proposal-engine/internal/strategy"

	gp "proposal-engine/internal/workers/proposal/generate-proposal"
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
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting proposal engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.Logging.Jaeger)
	defer obs.Shutdown()

	ctx := context.Background()

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

	// --- Catalog Store ---
	cacheTTL := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
	store := catalog.NewCachedStore(
		catalog.NewPostgresStore(pg.DB, log),
		redis.Client,
		cacheTTL,
		log,
	)

	// --- Post-run hooks ---
	var hooks []func(context.Context, *models.ProposalBundle)

	if cfg.Archive.Enabled {
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

		indexer := archive.NewIndexer(esClient.Client, cfg.Archive.Index, log)
		hooks = append(hooks, func(_ context.Context, bundle *models.ProposalBundle) {
			indexer.StoreAsync(bundle)
		})
	}

	if cfg.Notifications.Email.Enabled || cfg.Notifications.SNS.Enabled {
		notifyCfg := notify.Config{
			AWSRegion: cfg.Notifications.AWS.Region,
		}
		if cfg.Notifications.Email.Enabled {
			notifyCfg.FromEmail = cfg.Notifications.Email.FromEmail
			notifyCfg.Recipients = []string{cfg.Notifications.Email.ToEmail}
		}
		if cfg.Notifications.SNS.Enabled {
			notifyCfg.TopicARN = cfg.Notifications.SNS.TopicARN
		}

		notifier, err := notify.NewNotifier(ctx, notifyCfg, log)
		if err != nil {
			zapLog.Fatal("failed to create notifier", zap.Error(err))
		}
		hooks = append(hooks, notifier.Announce)
	}

	// --- Pipeline Orchestrator ---
	gateway := extraction.NewGateway(extraction.Config{
		BaseURL:    cfg.Extraction.BaseURL,
		APIKey:     cfg.Extraction.APIKey,
		Timeout:    cfg.Extraction.TimeoutDuration(),
		MaxRetries: cfg.Extraction.MaxRetries,
		BaseDelay:  cfg.Extraction.BaseDelayDuration(),
	}, log)

	checklist := make([]compliance.ChecklistEntry, 0, len(cfg.Compliance.Checklist))
	for _, entry := range cfg.Compliance.Checklist {
		checklist = append(checklist, compliance.ChecklistEntry{
			Standard: entry.Standard,
			Terms:    entry.Terms,
		})
	}

	orchestrator := pipeline.NewOrchestrator(pipeline.Options{
		Extractor: gateway,
		Store:     store,
		Rates: pricing.Rates{
			Logistics:      cfg.Pricing.LogisticsRate,
			Contingency:    cfg.Pricing.ContingencyRate,
			Tax:            cfg.Pricing.TaxRate,
			PerUnitTestFee: cfg.Pricing.PerUnitTestFee,
			PerLotTestFee:  cfg.Pricing.PerLotTestFee,
			Currency:       cfg.Pricing.Currency,
		},
		Thresholds: risk.Thresholds{
			BaseScore:           cfg.Risk.BaseScore,
			MTOPenalty:          cfg.Risk.MTOPenalty,
			UrgencyPenalty:      cfg.Risk.UrgencyPenalty,
			UrgencyDays:         cfg.Risk.UrgencyDays,
			ConfidencePenalty:   cfg.Risk.ConfidencePenalty,
			ConfidenceThreshold: cfg.Risk.ConfidenceThreshold,
		},
		Checklist:      checklist,
		TermsEvaluated: cfg.Compliance.TermsEvaluated,
		Synthesizer: strategy.New(
			strategy.Weights{
				Tech:       cfg.Strategy.TechWeight,
				Price:      cfg.Strategy.PriceWeight,
				Risk:       cfg.Strategy.RiskWeight,
				Compliance: cfg.Strategy.ComplianceWeight,
			},
			strategy.Band{
				VarianceMin: cfg.Strategy.VarianceMin,
				VarianceMax: cfg.Strategy.VarianceMax,
				Spread:      cfg.Strategy.BandSpread,
			},
			strategy.NewClockSource(),
		),
		Sink:          pipeline.NewLoggerSink(log),
		Logger:        log,
		Observability: obs,
		OnComplete:    hooks,
	})

	// --- Optional Zeebe Worker ---
	var zeebeClient zbc.Client
	if cfg.Camunda.BrokerAddress != "" {
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		handler := gp.NewHandler(
			&gp.Config{
				Timeout: time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
			},
			orchestrator, log,
		)
		zeebeClient.NewJobWorker().
			JobType(gp.TaskType).
			Handler(handler.Handle).
			MaxJobsActive(cfg.Camunda.MaxJobsActive).
			Timeout(time.Duration(cfg.Camunda.Timeout) * time.Millisecond).
			Open()

		zapLog.Info("worker started",
			zap.String("taskType", gp.TaskType),
			zap.Int("maxJobsActive", cfg.Camunda.MaxJobsActive),
			zap.Int("timeout_ms", cfg.Camunda.Timeout),
		)
	}

	// --- HTTP Server ---
	mux := http.NewServeMux()
	api.NewServer(orchestrator, log).Routes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Proposal engine stopped gracefully")
}
