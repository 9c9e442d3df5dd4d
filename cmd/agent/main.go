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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/agent"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra"
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

	if cfg.Agent.BackendURL == "" {
		logger.Fatal("agent.backend_url (или AGENT_BACKEND_URL) обязателен")
	}

	// 2. Метрики
	reg := prometheus.NewRegistry()
	am := agent.NewMetrics(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Agent.OpsPort)
		logger.Info("ops endpoint started", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("ops endpoint failed", zap.Error(err))
		}
	}()

	// 3. Конвейер отправки (Dependency Injection)
	client := agent.NewClient(cfg.Agent.BackendURL, cfg.Agent.SendTimeout)
	resolver := agent.NewResolver(client, logger)
	notifier := agent.NewZapNotifier(logger)
	dispatcher := agent.NewDispatcher(resolver, client, notifier, am, cfg.Agent.SendTimeout, logger)

	capture := agent.NewCaptureServer(dispatcher, logger)

	// 4. Локальный HTTP-приёмник событий плагина
	srv := &http.Server{
		Addr:        cfg.Agent.ListenAddr,
		Handler:     capture,
		ReadTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("agent started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("agent stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Даем летящим отправкам шанс долететь; гарантий доставки здесь нет
	dispatcher.Wait(5 * time.Second)
	logger.Info("agent exited properly")
}
