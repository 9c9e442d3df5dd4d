package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/infra/auth"
)

// ViewServer отдаёт данные дашборда слою представления. Сам рендеринг живёт
// снаружи (браузерный клиент); сервер лишь гарантирует контракт View и то,
// что смена фильтров не порождает сетевых походов к коллектору.
type ViewServer struct {
	router *chi.Mux
	dash   *Dashboard
	auth   *AuthService
	logger *zap.Logger
}

func NewViewServer(dash *Dashboard, authSvc *AuthService, logger *zap.Logger) *ViewServer {
	s := &ViewServer{
		router: chi.NewRouter(),
		dash:   dash,
		auth:   authSvc,
		logger: logger.Named("dashboard-api"),
	}
	s.routes()
	return s
}

// filterRequest — смена фильтров представления.
// Указатели различают "не менять" и "сбросить в пустое значение".
type filterRequest struct {
	Actor  *string `json:"actor"`
	Window *string `json:"window"`
}

func (s *ViewServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Post("/auth/token", s.handleLogin)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.auth, s.logger))

		r.Route("/api/v1/dashboard", func(r chi.Router) {
			r.Get("/view", s.handleView)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/filter", s.handleFilter)
		})
	})
}

func (s *ViewServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	resp, err := s.auth.GenerateToken(req.Username, req.Password)
	if err != nil {
		// не уточняем, что именно неверно (логин или пароль)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *ViewServer) handleView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.dash.View())
}

// handleRefresh — ручная перезагрузка данных с коллектора.
func (s *ViewServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.dash.Refresh(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.dash.View())
}

// handleFilter меняет фильтры и возвращает пересчитанное представление.
// Сеть не трогается: фильтрация — это всегда пересчёт по загруженному набору.
func (s *ViewServer) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Actor != nil {
		s.dash.SetActor(*req.Actor)
	}
	if req.Window != nil {
		s.dash.SetWindow(*req.Window)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.dash.View())
}

// ServeHTTP позволяет использовать ViewServer как стандартный http.Handler
func (s *ViewServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
