package agent

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// captureRequest — сырое событие, каким его отдаёт хук плагина.
type captureRequest struct {
	Username  string     `json:"username"`
	Project   string     `json:"project"`
	Timestamp *time.Time `json:"timestamp"`
	Added     int        `json:"added"`
	Modified  int        `json:"modified"`
	Deleted   int        `json:"deleted"`
}

// CaptureServer — локальная точка приёма событий от плагина Revit.
// Плагин отдаёт событие и тут же возвращается к работе: вся сетевая часть
// уходит в фоновые отправки диспетчера.
type CaptureServer struct {
	router     *chi.Mux
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewCaptureServer(dispatcher *Dispatcher, logger *zap.Logger) *CaptureServer {
	s := &CaptureServer{
		router:     chi.NewRouter(),
		dispatcher: dispatcher,
		logger:     logger.Named("capture"),
	}
	s.routes()
	return s
}

func (s *CaptureServer) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/v1/events", s.handleEvent)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (s *CaptureServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	occurredAt := time.Now()
	if req.Timestamp != nil {
		occurredAt = *req.Timestamp
	}

	s.dispatcher.Dispatch(ChangeEvent{
		ActorHandle: req.Username,
		ProjectName: req.Project,
		OccurredAt:  occurredAt,
		Added:       clampNonNegative(req.Added),
		Modified:    clampNonNegative(req.Modified),
		Deleted:     clampNonNegative(req.Deleted),
	})

	// Fire-and-forget: плагину важно только то, что событие принято
	w.WriteHeader(http.StatusAccepted)
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ServeHTTP позволяет использовать CaptureServer как стандартный http.Handler
func (s *CaptureServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
