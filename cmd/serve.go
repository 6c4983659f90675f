package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genfity-report-service/internal/cache"
	"genfity-report-service/internal/config"
	"genfity-report-service/internal/db"
	httpapi "genfity-report-service/internal/http"
	"genfity-report-service/internal/http/handlers"
	"genfity-report-service/internal/logger"
	"genfity-report-service/internal/queue"
	"genfity-report-service/internal/report"
	"genfity-report-service/internal/storage"
	"genfity-report-service/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	consumerMaxRetries = 5
	consumerRetryDelay = 5 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report HTTP API and the cache invalidation worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(a.config())
		},
	}
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
	_ = a.v.BindPFlag("HTTP_ADDR", serveCmd.Flags().Lookup("addr"))
	return serveCmd
}

func serve(cfg config.Config) error {
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	orders := store.NewPostgres(pool, store.Defaults{Currency: cfg.DefaultCurrency, Timezone: cfg.DefaultTimezone})
	reportCache := newReportCache(ctx, cfg, log)

	h := &handlers.Handler{
		Engine:    report.NewEngine(orders),
		Cache:     reportCache,
		Snapshots: newSnapshots(ctx, cfg, log),
		Readiness: orders,
		Logger:    log,
		Config:    cfg,
	}

	if queueClient := newQueue(ctx, cfg, log); queueClient != nil {
		defer queueClient.Close()
		h.Events = queueClient

		if cfg.RabbitMQWorkerMode == "daemon" {
			log.Info("report cache invalidator enabled", zap.String("mode", "daemon"), zap.String("queue", queue.ReportCacheQueue))
			go func() {
				err := queueClient.ConsumeWithRetry(ctx, queue.ReportCacheQueue, queue.CacheInvalidator(reportCache, log), consumerMaxRetries, consumerRetryDelay)
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Error("consumer stopped", zap.Error(err))
				}
			}()
		} else {
			log.Info("report cache invalidator disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
		}
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, orders),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("report api ready", zap.String("base", "/api/merchant/reports"))
		log.Info("report service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	return nil
}

// newReportCache prefers Redis so every replica shares one cache and one
// invalidation stream.
func newReportCache(ctx context.Context, cfg config.Config, log *zap.Logger) cache.Store {
	if cfg.RedisURL == "" {
		log.Info("report cache in memory (REDIS_URL is empty)")
		return cache.NewMemory(cache.DefaultMaxEntries)
	}
	redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		log.Warn("redis connection failed; using in-memory cache", zap.Error(err))
		return cache.NewMemory(cache.DefaultMaxEntries)
	}
	log.Info("report cache in redis")
	return redisCache
}

func newSnapshots(ctx context.Context, cfg config.Config, log *zap.Logger) *storage.Snapshots {
	objectStore, err := storage.NewObjectStore(ctx, storageConfig(cfg))
	if errors.Is(err, storage.ErrNotConfigured) {
		log.Info("report snapshots disabled (object store not configured)")
		return nil
	}
	if err != nil {
		log.Warn("object store init failed; report snapshots disabled", zap.Error(err))
		return nil
	}
	return storage.NewSnapshots(objectStore)
}

func storageConfig(cfg config.Config) storage.Config {
	return storage.Config{
		Endpoint:        cfg.ObjectStoreEndpoint,
		Region:          cfg.ObjectStoreRegion,
		AccessKeyID:     cfg.ObjectStoreAccessKeyID,
		SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
		Bucket:          cfg.ObjectStoreBucket,
		PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
		StorageClass:    cfg.ObjectStoreStorageClass,
	}
}

// newQueue connects to RabbitMQ and declares the report topology. Failures
// are fatal in production and degrade to no worker elsewhere.
func newQueue(ctx context.Context, cfg config.Config, log *zap.Logger) *queue.Client {
	if cfg.RabbitMQURL == "" {
		log.Info("report worker disabled (RABBITMQ_URL is empty)")
		return nil
	}

	log.Info("rabbitmq enabled", zap.String("cacheQueue", queue.ReportCacheQueue))
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		log.Warn("rabbitmq connection failed; continuing without worker", zap.Error(err))
		return nil
	}

	if err := queue.EnsureReportTopology(ctx, qc); err != nil {
		if cfg.Env == "production" {
			log.Fatal("rabbitmq report topology failed", zap.Error(err))
		}
		log.Warn("rabbitmq report topology failed; continuing without worker", zap.Error(err))
		_ = qc.Close()
		return nil
	}
	return qc
}
