package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/dashboard"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra/auth"
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

	if cfg.Dashboard.BackendURL == "" {
		logger.Fatal("dashboard.backend_url (или DASHBOARD_BACKEND_URL) обязателен")
	}

	// 2. Ключи подписи токенов доступа
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("failed to load private key", zap.Error(err))
	}
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("failed to load public key", zap.Error(err))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Сборка дашборда (Dependency Injection, без ambient-синглтонов:
	// сначала источник данных и агрегатор, затем то, что запускает загрузку)
	loader := dashboard.NewLoader(cfg.Dashboard.BackendURL, cfg.Dashboard.FetchTimeout, logger)
	dash := dashboard.New(loader, logger)
	authService := dashboard.NewAuthService(cfg.Dashboard.Viewers, privateKey, publicKey, cfg.Auth.TokenTTL)
	api := dashboard.NewViewServer(dash, authService, logger)

	// 4. Начальная загрузка и (опционально) автообновление по сигналу Redis.
	// Слушатель при каждом успешном коннекте сам дёргает Refresh, поэтому
	// отдельный начальный Load нужен только без Redis.
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		go dashboard.ListenIngestSignals(appCtx, rdb, logger, infra.RedisChanMetricsIngested, func() {
			dash.Refresh(appCtx)
		})
	} else {
		go dash.Refresh(appCtx)
	}

	// 5. HTTP Server
	srv := &http.Server{
		Addr:         cfg.Dashboard.ListenAddr,
		Handler:      api,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("dashboard started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("dashboard stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("dashboard exited properly")
}
