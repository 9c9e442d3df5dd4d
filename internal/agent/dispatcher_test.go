package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// Потокобезопасные фейки: transmit работает в собственной горутине.

type fakeResolver struct {
	mu    sync.Mutex
	id    int64
	err   error
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, handle string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.id, f.err
}

type fakeSubmitter struct {
	mu        sync.Mutex
	err       error
	submitted []domain.MetricIn
	traceIDs  []string
}

func (f *fakeSubmitter) SubmitMetric(ctx context.Context, m domain.MetricIn, traceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, m)
	f.traceIDs = append(f.traceIDs, traceID)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(message string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func newTestDispatcher(r *fakeResolver, s *fakeSubmitter, n *fakeNotifier) *Dispatcher {
	return NewDispatcher(r, s, n, NewMetrics(nil), time.Second, zap.NewNop())
}

func TestDispatcher_DeliversEvent(t *testing.T) {
	resolver := &fakeResolver{id: 42}
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(resolver, submitter, notifier)

	occurred := time.Date(2025, 3, 1, 12, 30, 15, 928_000_000, time.UTC)
	d.Dispatch(ChangeEvent{
		ActorHandle: "ivanov",
		ProjectName: "Tower A",
		OccurredAt:  occurred,
		Added:       3,
		Modified:    1,
	})
	d.Wait(2 * time.Second)

	require.Len(t, submitter.submitted, 1)
	m := submitter.submitted[0]
	require.Equal(t, int64(42), m.UserID)
	require.Equal(t, "Tower A", m.Project)
	require.True(t, m.Timestamp.Equal(occurred))
	require.Equal(t, 3, m.Added)
	require.NotEmpty(t, submitter.traceIDs[0])
	require.Empty(t, notifier.all())
}

func TestDispatcher_EmptyHandleDroppedSynchronously(t *testing.T) {
	resolver := &fakeResolver{id: 1}
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(resolver, submitter, notifier)

	d.Dispatch(ChangeEvent{ActorHandle: ""})

	// Событие отброшено до горутины: оператор уведомлён, сеть не тронута
	require.Len(t, notifier.all(), 1)
	require.Equal(t, 0, resolver.calls)
	require.Empty(t, submitter.submitted)
}

func TestDispatcher_ResolveFailureSkipsSubmit(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("directory down")}
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(resolver, submitter, notifier)

	d.Dispatch(ChangeEvent{ActorHandle: "ivanov"})
	d.Wait(2 * time.Second)

	require.Empty(t, submitter.submitted)
	require.Equal(t, []string{"failed to resolve actor identity"}, notifier.all())
}

func TestDispatcher_SubmitFailureNotifiesWithoutRetry(t *testing.T) {
	resolver := &fakeResolver{id: 1}
	submitter := &fakeSubmitter{err: errors.New("collector down")}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(resolver, submitter, notifier)

	d.Dispatch(ChangeEvent{ActorHandle: "ivanov"})
	d.Wait(2 * time.Second)

	// Ровно одна попытка, ровно одно уведомление
	require.Equal(t, 1, resolver.calls)
	require.Equal(t, []string{"failed to submit metric"}, notifier.all())
}

func TestDispatcher_ConcurrentEventsAllDelivered(t *testing.T) {
	resolver := &fakeResolver{id: 5}
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(resolver, submitter, notifier)

	for i := 0; i < 20; i++ {
		d.Dispatch(ChangeEvent{ActorHandle: "ivanov", OccurredAt: time.Now(), Added: 1})
	}
	d.Wait(5 * time.Second)

	require.Len(t, submitter.submitted, 20)
	require.Empty(t, notifier.all())
}
