package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector/handler"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra"
)

// CollectorServer — HTTP-фасад коллектора: справочник пользователей и приём
// метрик. Каждый доменный роут смонтирован дважды — с префиксом /api и без
// него: старые сборки плагина ходят по коротким путям, новые потребители по
// /api/*, и оба варианта обязаны жить одновременно.
type CollectorServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	usersHandler   *handler.UsersHandler   // /users/
	metricsHandler *handler.MetricsHandler // /metrics/, /metrics/summary/
}

// NewCollectorServer инициализирует сервер коллектора со всеми зависимостями
func NewCollectorServer(
	cfg *infra.Config,
	logger *zap.Logger,
	om *collector.Metrics,
	usersH *handler.UsersHandler,
	metricsH *handler.MetricsHandler,
) *CollectorServer {
	s := &CollectorServer{
		router:         chi.NewRouter(),
		logger:         logger.Named("collector-api"),
		cfg:            cfg,
		usersHandler:   usersH,
		metricsHandler: metricsH,
	}

	s.routes(om)
	return s
}

func (s *CollectorServer) routes(om *collector.Metrics) {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// /users/ и /users — одно и то же: клиенты шлют и так, и так
	r.Use(middleware.StripSlashes)
	r.Use(TracingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Лимитер общий для обоих алиасов ingest-роута
	ingestLimiter := rate.NewLimiter(rate.Limit(s.cfg.Server.IngestRateLimit), s.cfg.Server.IngestRateBurst)

	mount := func(prefix string) {
		r.Route(prefix+"/users", func(r chi.Router) {
			r.Use(InstrumentMiddleware(om, "users"))
			r.Get("/", s.usersHandler.List)
			r.Post("/", s.usersHandler.Create)
		})

		r.Route(prefix+"/metrics", func(r chi.Router) {
			r.Use(InstrumentMiddleware(om, "metrics"))
			r.Get("/", s.metricsHandler.List)
			r.Get("/summary", s.metricsHandler.Summary)
			r.With(RateLimitMiddleware(ingestLimiter)).Post("/", s.metricsHandler.Ingest)
		})
	}

	mount("")     // /users/, /metrics/
	mount("/api") // /api/users/, /api/metrics/
}

// ServeHTTP позволяет использовать CollectorServer как стандартный http.Handler
func (s *CollectorServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
