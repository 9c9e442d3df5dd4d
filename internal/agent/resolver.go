package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// Directory — операции справочника, нужные резолверу.
type Directory interface {
	FindActorsByNickname(ctx context.Context, nickname string) ([]domain.Actor, error)
	CreateActor(ctx context.Context, actor domain.Actor) (*domain.Actor, error)
}

// Resolver превращает никнейм в стабильный идентификатор пользователя:
// идемпотентный upsert по естественному ключу. Кэширования между вызовами нет —
// каждая отправка резолвится заново.
type Resolver struct {
	dir    Directory
	logger *zap.Logger
}

func NewResolver(dir Directory, logger *zap.Logger) *Resolver {
	return &Resolver{dir: dir, logger: logger.Named("resolver")}
}

// Resolve ищет пользователя по никнейму, при отсутствии — лениво создаёт
// запись с плейсхолдерами профиля. Любой отказ справочника терминален для
// этого вызова: наверх уходит ошибка и отправка метрики не происходит.
func (r *Resolver) Resolve(ctx context.Context, handle string) (int64, error) {
	actors, err := r.dir.FindActorsByNickname(ctx, handle)
	if err != nil {
		return 0, fmt.Errorf("resolver: %w", err)
	}

	if len(actors) > 0 {
		// Уникальность никнейма гарантирует справочник; если записей всё же
		// несколько — детерминированно берём первую
		return actors[0].ID, nil
	}

	created, err := r.dir.CreateActor(ctx, domain.Actor{
		Nickname:   handle,
		Name:       "Неизвестно",
		Surname:    "Неизвестно",
		Patronymic: "",
	})
	if err != nil {
		return 0, fmt.Errorf("resolver: %w", err)
	}

	r.logger.Info("registered new actor",
		zap.String("nickname", handle),
		zap.Int64("id", created.ID))
	return created.ID, nil
}
