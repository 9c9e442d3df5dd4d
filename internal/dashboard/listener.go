package dashboard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListenIngestSignals — "живучая" подписка на сигнал коллектора о новых метриках.
// Обрабатывает переподключения: обрыв связи с Redis не убивает горутину, а
// приводит к паузе и новой подписке. При каждом успешном коннекте вызывается
// onSignal: за время обрыва данные могли уйти вперёд.
func ListenIngestSignals(
	ctx context.Context,
	rdb *redis.Client,
	logger *zap.Logger,
	channel string,
	onSignal func(),
) {
	log := logger.Named("ingest-listener")
	for {
		pubsub := rdb.Subscribe(ctx, channel)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		// Синхронизируемся при каждом успешном коннекте
		onSignal()

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case _, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				onSignal()
			}
		}

		pubsub.Close()
		time.Sleep(time.Second)
	}
}
