package agent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// IdentityResolver — см. Resolver; интерфейс объявлен на стороне потребителя.
type IdentityResolver interface {
	Resolve(ctx context.Context, handle string) (int64, error)
}

// MetricSubmitter отправляет собранную запись метрики в коллектор.
type MetricSubmitter interface {
	SubmitMetric(ctx context.Context, m domain.MetricIn, traceID string) error
}

// Dispatcher — отправитель событий по схеме fire-and-forget.
// Каждое событие уходит в собственной горутине, вызывающий не блокируется на
// сетевом I/O и результата не получает. Порядок доставки и дедупликация не
// гарантируются: несколько событий могут лететь одновременно.
type Dispatcher struct {
	resolver  IdentityResolver
	submitter MetricSubmitter
	notifier  Notifier
	logger    *zap.Logger
	metrics   *Metrics
	timeout   time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(
	resolver IdentityResolver,
	submitter MetricSubmitter,
	notifier Notifier,
	metrics *Metrics,
	timeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		resolver:  resolver,
		submitter: submitter,
		notifier:  notifier,
		logger:    logger.Named("dispatcher"),
		metrics:   metrics,
		timeout:   timeout,
	}
}

// Dispatch принимает событие и немедленно возвращает управление.
// Отказы не ретраятся и не складываются в очередь: уведомили — и выбросили.
func (d *Dispatcher) Dispatch(event ChangeEvent) {
	if event.ActorHandle == "" {
		d.notifier.Notify("change event dropped: empty actor handle", nil)
		return
	}

	d.wg.Add(1)
	d.metrics.InFlight.Inc()
	go func() {
		defer d.wg.Done()
		defer d.metrics.InFlight.Dec()
		d.transmit(event)
	}()
}

func (d *Dispatcher) transmit(event ChangeEvent) {
	// Запрос переживает завершение хендлера, поэтому контекст собственный
	ctx, cancel := context.WithTimeout(context.Background(), 2*d.timeout)
	defer cancel()

	traceID := uuid.New().String()
	log := d.logger.With(zap.String("trace_id", traceID), zap.String("nickname", event.ActorHandle))

	userID, err := d.resolver.Resolve(ctx, event.ActorHandle)
	if err != nil {
		d.metrics.Failures.WithLabelValues("resolve").Inc()
		d.notifier.Notify("failed to resolve actor identity", err)
		return
	}

	metric := domain.MetricIn{
		UserID:    userID,
		Project:   event.ProjectName,
		Timestamp: event.OccurredAt, // сериализуется с полной доступной точностью
		Added:     event.Added,
		Modified:  event.Modified,
		Deleted:   event.Deleted,
	}

	if err := d.submitter.SubmitMetric(ctx, metric, traceID); err != nil {
		d.metrics.Failures.WithLabelValues("submit").Inc()
		d.notifier.Notify("failed to submit metric", err)
		return
	}

	d.metrics.Dispatched.Inc()
	log.Debug("metric delivered", zap.Int64("user_id", userID))
}

// Wait даёт летящим отправкам шанс завершиться при остановке сайдкара.
// Это ограниченное ожидание, а не гарантия доставки: по истечении срока
// недолетевшие события бросаются.
func (d *Dispatcher) Wait(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		d.logger.Warn("shutdown wait elapsed, abandoning in-flight transmissions")
	}
}
