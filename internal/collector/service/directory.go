package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// ErrNicknameTaken возвращается при попытке создать пользователя с занятым
// никнеймом: справочник держит не больше одной записи на никнейм.
var ErrNicknameTaken = errors.New("nickname already taken")

// DirectoryRepository описывает требования сервиса к хранилищу справочника
type DirectoryRepository interface {
	GetActorByNickname(ctx context.Context, nickname string) (*domain.Actor, error)
	ListActors(ctx context.Context, nickname string) ([]domain.Actor, error)
	CreateActor(ctx context.Context, a domain.Actor) (*domain.Actor, error)
}

type DirectoryService struct {
	repo   DirectoryRepository
	logger *zap.Logger
}

func NewDirectoryService(repo DirectoryRepository, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		logger: logger.Named("directory-service"),
	}
}

// CreateActor регистрирует пользователя, охраняя уникальность никнейма.
func (s *DirectoryService) CreateActor(ctx context.Context, a domain.Actor) (*domain.Actor, error) {
	if a.Nickname == "" {
		return nil, fmt.Errorf("directory: nickname is required")
	}

	existing, err := s.repo.GetActorByNickname(ctx, a.Nickname)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	if existing != nil {
		return nil, ErrNicknameTaken
	}

	created, err := s.repo.CreateActor(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}

	s.logger.Info("actor created",
		zap.Int64("id", created.ID),
		zap.String("nickname", created.Nickname))
	return created, nil
}

// ListActors возвращает справочник; непустой nickname — точечный поиск.
func (s *DirectoryService) ListActors(ctx context.Context, nickname string) ([]domain.Actor, error) {
	actors, err := s.repo.ListActors(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	return actors, nil
}
