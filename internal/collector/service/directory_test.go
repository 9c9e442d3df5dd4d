package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

type fakeDirectoryRepo struct {
	byNickname map[string]*domain.Actor
	getErr     error
	createErr  error

	created []domain.Actor
}

func (f *fakeDirectoryRepo) GetActorByNickname(ctx context.Context, nickname string) (*domain.Actor, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byNickname[nickname], nil
}

func (f *fakeDirectoryRepo) ListActors(ctx context.Context, nickname string) ([]domain.Actor, error) {
	var out []domain.Actor
	for _, a := range f.byNickname {
		if nickname == "" || a.Nickname == nickname {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeDirectoryRepo) CreateActor(ctx context.Context, a domain.Actor) (*domain.Actor, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.ID = int64(len(f.created) + 1)
	f.created = append(f.created, a)
	return &a, nil
}

func TestDirectoryService_CreateActor(t *testing.T) {
	repo := &fakeDirectoryRepo{byNickname: map[string]*domain.Actor{}}
	svc := NewDirectoryService(repo, zap.NewNop())

	created, err := svc.CreateActor(context.Background(), domain.Actor{Nickname: "ivanov"})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
}

func TestDirectoryService_NicknameUniqueness(t *testing.T) {
	repo := &fakeDirectoryRepo{byNickname: map[string]*domain.Actor{
		"ivanov": {ID: 1, Nickname: "ivanov"},
	}}
	svc := NewDirectoryService(repo, zap.NewNop())

	_, err := svc.CreateActor(context.Background(), domain.Actor{Nickname: "ivanov"})
	require.ErrorIs(t, err, ErrNicknameTaken)
	require.Empty(t, repo.created)
}

func TestDirectoryService_EmptyNicknameRejected(t *testing.T) {
	svc := NewDirectoryService(&fakeDirectoryRepo{}, zap.NewNop())
	_, err := svc.CreateActor(context.Background(), domain.Actor{})
	require.Error(t, err)
}

func TestDirectoryService_LookupFailureBlocksCreate(t *testing.T) {
	repo := &fakeDirectoryRepo{getErr: errors.New("db down")}
	svc := NewDirectoryService(repo, zap.NewNop())

	_, err := svc.CreateActor(context.Background(), domain.Actor{Nickname: "x"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNicknameTaken)
	require.Empty(t, repo.created)
}
