package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

var (
	// ErrUnknownActor — метрика ссылается на несуществующего пользователя.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrOverloaded — буфер приёма переполнен, запись сброшена.
	ErrOverloaded = errors.New("ingest buffer overloaded")
)

// ActorChecker проверяет существование пользователя перед постановкой в буфер
type ActorChecker interface {
	ActorExists(ctx context.Context, id int64) (bool, error)
}

// MetricReader — выборки для потребителей (списки и сводка)
type MetricReader interface {
	ListMetrics(ctx context.Context, f domain.MetricsFilter) ([]domain.MetricOut, error)
	Summarize(ctx context.Context, f domain.MetricsFilter) (*domain.MetricsSummary, error)
}

// Ingestor — неблокирующий приёмник записей (реализуется IngestBuffer)
type Ingestor interface {
	Enqueue(m domain.MetricIn) bool
}

type MetricsService struct {
	checker ActorChecker
	reader  MetricReader
	buf     Ingestor
	logger  *zap.Logger
}

func NewMetricsService(checker ActorChecker, reader MetricReader, buf Ingestor, logger *zap.Logger) *MetricsService {
	return &MetricsService{
		checker: checker,
		reader:  reader,
		buf:     buf,
		logger:  logger.Named("metrics-service"),
	}
}

// Ingest валидирует запись и ставит её в очередь на пакетную запись.
// Успешный возврат означает "принято", а не "сохранено": персистентность
// наступает при ближайшем flush буфера.
func (s *MetricsService) Ingest(ctx context.Context, m domain.MetricIn) error {
	if m.Timestamp.IsZero() {
		return fmt.Errorf("metrics: timestamp is required")
	}

	ok, err := s.checker.ActorExists(ctx, m.UserID)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if !ok {
		return ErrUnknownActor
	}

	if !s.buf.Enqueue(m) {
		return ErrOverloaded
	}
	return nil
}

// List возвращает записи с вложенным пользователем, в порядке вставки.
func (s *MetricsService) List(ctx context.Context, f domain.MetricsFilter) ([]domain.MetricOut, error) {
	out, err := s.reader.ListMetrics(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return out, nil
}

// Summary считает суммарную статистику за период.
func (s *MetricsService) Summary(ctx context.Context, f domain.MetricsFilter) (*domain.MetricsSummary, error) {
	sum, err := s.reader.Summarize(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return sum, nil
}
