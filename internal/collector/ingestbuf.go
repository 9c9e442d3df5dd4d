package collector

/*
Файл ingestbuf.go реализует буфер приёма метрик: события от агентов
накапливаются в памяти и пишутся в PostgreSQL пакетами — по таймеру или при
достижении лимита пачки. Хендлер POST /metrics/ не ждёт базу и отвечает сразу.

При остановке сервиса применяется Drain Pattern: вход "запирается" атомарным
флагом, канал закрывается, воркер вычитывает остаток и делает финальный flush.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// MetricWriter определяет, куда физически сохраняются метрики
type MetricWriter interface {
	// WriteBatch сохраняет пачку записей за один раз
	WriteBatch(ctx context.Context, metrics []domain.MetricIn) error
}

// IngestBuffer — неблокирующий накопитель входящих метрик.
type IngestBuffer struct {
	ch      chan domain.MetricIn
	repo    MetricWriter
	logger  *zap.Logger
	metrics *Metrics
	wg      sync.WaitGroup

	batchSize     int
	flushInterval time.Duration

	// Вызывается после каждого успешного flush (сигнал дашборду через Redis)
	onFlush func(n int)

	isClosed int32 // Атомарный флаг (0 - открыт, 1 - закрыт)
}

type BufferOptions struct {
	Size          int
	BatchSize     int
	FlushInterval time.Duration
	OnFlush       func(n int)
}

func NewIngestBuffer(repo MetricWriter, metrics *Metrics, opts BufferOptions, logger *zap.Logger) *IngestBuffer {
	if opts.Size <= 0 {
		opts.Size = 10000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	return &IngestBuffer{
		ch:            make(chan domain.MetricIn, opts.Size),
		repo:          repo,
		logger:        logger.Named("ingestbuf"),
		metrics:       metrics,
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
		onFlush:       opts.OnFlush,
	}
}

func (b *IngestBuffer) Start() {
	b.wg.Add(1)
	go b.worker()
}

// Stop «запирает» вход и ждет, пока воркер допишет остаток буфера.
func (b *IngestBuffer) Stop() {
	atomic.StoreInt32(&b.isClosed, 1)

	// Крошечная пауза, чтобы текущие Enqueue успели проскочить
	time.Sleep(10 * time.Millisecond)

	b.logger.Info("stopping ingest buffer: closing channel and flushing...")
	close(b.ch)
	b.wg.Wait()
	b.logger.Info("ingest buffer stopped gracefully")
}

// Enqueue кладёт метрику в буфер. false означает, что запись не принята:
// буфер закрыт или переполнен (Load Shedding — при перегрузе сбрасываем
// нагрузку, а не копим задержку).
func (b *IngestBuffer) Enqueue(m domain.MetricIn) bool {
	if atomic.LoadInt32(&b.isClosed) == 1 {
		b.logger.Warn("metric dropped: buffer is stopping", zap.Int64("user_id", m.UserID))
		return false
	}

	select {
	case b.ch <- m:
		b.metrics.BufferFill.Set(float64(len(b.ch)))
		return true
	default:
		b.metrics.DroppedTotal.Inc()
		b.logger.Error("ingest_buffer_overflow", zap.Int64("user_id", m.UserID))
		return false
	}
}

func (b *IngestBuffer) worker() {
	defer b.wg.Done()

	batch := make([]domain.MetricIn, 0, b.batchSize)
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст на выходе может быть уже закрыт
		if err := b.repo.WriteBatch(context.Background(), batch); err != nil {
			b.logger.Error("metrics flush failed", zap.Int("batch", len(batch)), zap.Error(err))
		} else {
			b.metrics.IngestedTotal.Add(float64(len(batch)))
			if b.onFlush != nil {
				b.onFlush(len(batch))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case m, ok := <-b.ch:
			if !ok {
				// Закрытие канала в Stop() — самодостаточный сигнал завершения:
				// воркер сначала вычитает очередь, потом получит ok == false
				flush()
				b.logger.Info("ingest worker finished")
				return
			}
			batch = append(batch, m)
			if len(batch) >= b.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
