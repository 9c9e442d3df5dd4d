package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector/service"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// MetricsProvider Описываем, что нам нужно от сервиса метрик
type MetricsProvider interface {
	Ingest(ctx context.Context, m domain.MetricIn) error
	List(ctx context.Context, f domain.MetricsFilter) ([]domain.MetricOut, error)
	Summary(ctx context.Context, f domain.MetricsFilter) (*domain.MetricsSummary, error)
}

type MetricsHandler struct {
	service MetricsProvider
}

func NewMetricsHandler(s MetricsProvider) *MetricsHandler {
	return &MetricsHandler{service: s}
}

// Ingest обрабатывает POST /metrics/ — приём записи от агента.
// 202: запись принята в буфер, сохранение пакетное и отложенное.
func (h *MetricsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req domain.MetricIn
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.service.Ingest(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownActor):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, service.ErrOverloaded):
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		default:
			http.Error(w, "failed to ingest metric", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// List обрабатывает GET /metrics/ с необязательными фильтрами
// user_id, start_date, end_date (ISO 8601).
func (h *MetricsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.service.List(r.Context(), f)
	if err != nil {
		http.Error(w, "failed to list metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Summary обрабатывает GET /metrics/summary/ — суммарные счётчики за период.
func (h *MetricsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sum, err := h.service.Summary(r.Context(), f)
	if err != nil {
		http.Error(w, "failed to summarize metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sum)
}

func parseFilter(r *http.Request) (domain.MetricsFilter, error) {
	var f domain.MetricsFilter
	q := r.URL.Query()

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, errors.New("invalid user_id")
		}
		f.UserID = &id
	}
	if raw := q.Get("start_date"); raw != "" {
		t, err := parseQueryTime(raw)
		if err != nil {
			return f, errors.New("invalid start_date")
		}
		f.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := parseQueryTime(raw)
		if err != nil {
			return f, errors.New("invalid end_date")
		}
		f.EndDate = &t
	}
	return f, nil
}

// parseQueryTime принимает RFC3339 и укороченные ISO-формы без зоны.
func parseQueryTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unsupported time format")
}
