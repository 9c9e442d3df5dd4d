package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector/handler"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector/server"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector/service"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/repository/postgres"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Database.URL == "" {
		logger.Fatal("database.url (или DATABASE_URL) обязателен")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. PostgreSQL: пул + проверка доступности с ретраями.
	// База может подниматься дольше коллектора (docker-compose) — даём ей время.
	pool, err := postgres.NewPool(appCtx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	r := retry.New(
		retry.Context(appCtx),
		retry.Attempts(10),
		retry.Delay(time.Second),
	)
	if err := r.Do(func() error {
		pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
		defer pingCancel()
		return pool.Ping(pingCtx)
	}); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	if err := postgres.EnsureSchema(appCtx, pool); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	// 3. Redis (необязателен): сигнал дашборду о новых данных
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	// 4. Метрики
	reg := prometheus.NewRegistry()
	om := collector.NewMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.OpsPort)
		logger.Info("ops endpoint started", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("ops endpoint failed", zap.Error(err))
		}
	}()

	// 5. Слои коллектора (Dependency Injection)
	dirRepo := postgres.NewDirectoryRepo(pool)
	metRepo := postgres.NewMetricRepo(pool)

	buf := collector.NewIngestBuffer(metRepo, om, collector.BufferOptions{
		Size:          cfg.Server.IngestBufferSize,
		BatchSize:     cfg.Server.IngestBatchSize,
		FlushInterval: cfg.Server.IngestFlushInterval,
		OnFlush: func(n int) {
			if rdb == nil {
				return
			}
			payload := fmt.Sprintf("%d", n)
			if err := rdb.Publish(context.Background(), infra.RedisChanMetricsIngested, payload).Err(); err != nil {
				logger.Warn("ingest signal delivery failed", zap.Error(err))
			}
		},
	}, logger)
	buf.Start()

	dirService := service.NewDirectoryService(dirRepo, logger)
	metService := service.NewMetricsService(dirRepo, metRepo, buf, logger)

	usersHandler := handler.NewUsersHandler(dirService)
	metricsHandler := handler.NewMetricsHandler(metService)

	api := server.NewCollectorServer(cfg, logger, om, usersHandler, metricsHandler)

	// 6. HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("collector started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("collector stopping...")

	// Даем 5 секунд на завершение запросов, затем дожимаем буфер в базу
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	buf.Stop()
	logger.Info("collector exited properly")
}
