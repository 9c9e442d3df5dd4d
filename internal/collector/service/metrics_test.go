package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

type fakeChecker struct {
	exists bool
	err    error
}

func (f *fakeChecker) ActorExists(ctx context.Context, id int64) (bool, error) {
	return f.exists, f.err
}

type fakeIngestor struct {
	accept   bool
	enqueued []domain.MetricIn
}

func (f *fakeIngestor) Enqueue(m domain.MetricIn) bool {
	if f.accept {
		f.enqueued = append(f.enqueued, m)
	}
	return f.accept
}

type fakeReader struct{}

func (fakeReader) ListMetrics(ctx context.Context, f domain.MetricsFilter) ([]domain.MetricOut, error) {
	return nil, nil
}

func (fakeReader) Summarize(ctx context.Context, f domain.MetricsFilter) (*domain.MetricsSummary, error) {
	return &domain.MetricsSummary{}, nil
}

func validMetric() domain.MetricIn {
	return domain.MetricIn{UserID: 7, Project: "p", Timestamp: time.Now(), Added: 1}
}

func TestMetricsService_Ingest(t *testing.T) {
	buf := &fakeIngestor{accept: true}
	svc := NewMetricsService(&fakeChecker{exists: true}, fakeReader{}, buf, zap.NewNop())

	require.NoError(t, svc.Ingest(context.Background(), validMetric()))
	require.Len(t, buf.enqueued, 1)
}

func TestMetricsService_IngestUnknownActor(t *testing.T) {
	buf := &fakeIngestor{accept: true}
	svc := NewMetricsService(&fakeChecker{exists: false}, fakeReader{}, buf, zap.NewNop())

	err := svc.Ingest(context.Background(), validMetric())
	require.ErrorIs(t, err, ErrUnknownActor)
	require.Empty(t, buf.enqueued)
}

func TestMetricsService_IngestOverload(t *testing.T) {
	svc := NewMetricsService(&fakeChecker{exists: true}, fakeReader{}, &fakeIngestor{accept: false}, zap.NewNop())
	require.ErrorIs(t, svc.Ingest(context.Background(), validMetric()), ErrOverloaded)
}

func TestMetricsService_IngestZeroTimestamp(t *testing.T) {
	buf := &fakeIngestor{accept: true}
	svc := NewMetricsService(&fakeChecker{exists: true}, fakeReader{}, buf, zap.NewNop())

	m := validMetric()
	m.Timestamp = time.Time{}
	require.Error(t, svc.Ingest(context.Background(), m))
	require.Empty(t, buf.enqueued)
}

func TestMetricsService_IngestCheckerFailure(t *testing.T) {
	svc := NewMetricsService(&fakeChecker{err: errors.New("db down")}, fakeReader{}, &fakeIngestor{accept: true}, zap.NewNop())

	err := svc.Ingest(context.Background(), validMetric())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnknownActor)
}
