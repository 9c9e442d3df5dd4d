package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// DirectoryRepo — хранилище справочника пользователей (таблица users).
type DirectoryRepo struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepo(pool *pgxpool.Pool) *DirectoryRepo {
	return &DirectoryRepo{pool: pool}
}

// Ping проверяет доступность базы при старте
func (r *DirectoryRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// GetActorByNickname возвращает nil, nil если пользователя с таким никнеймом нет.
func (r *DirectoryRepo) GetActorByNickname(ctx context.Context, nickname string) (*domain.Actor, error) {
	query := `
		SELECT id, nickname, name, surname, COALESCE(patronymic, '')
		FROM users WHERE nickname = $1`

	a := &domain.Actor{}
	err := r.pool.QueryRow(ctx, query, nickname).Scan(
		&a.ID, &a.Nickname, &a.Name, &a.Surname, &a.Patronymic,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: lookup by nickname: %w", err)
	}
	return a, nil
}

// ListActors отдает весь справочник; непустой nickname сужает до точного совпадения.
func (r *DirectoryRepo) ListActors(ctx context.Context, nickname string) ([]domain.Actor, error) {
	query := `
		SELECT id, nickname, name, surname, COALESCE(patronymic, '')
		FROM users
		WHERE ($1 = '' OR nickname = $1)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, nickname)
	if err != nil {
		return nil, fmt.Errorf("postgres: list actors: %w", err)
	}
	defer rows.Close()

	actors := make([]domain.Actor, 0)
	for rows.Next() {
		var a domain.Actor
		if err := rows.Scan(&a.ID, &a.Nickname, &a.Name, &a.Surname, &a.Patronymic); err != nil {
			return nil, fmt.Errorf("postgres: scan actor: %w", err)
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// CreateActor вставляет новую запись и возвращает её с присвоенным id.
func (r *DirectoryRepo) CreateActor(ctx context.Context, a domain.Actor) (*domain.Actor, error) {
	query := `
		INSERT INTO users (nickname, name, surname, patronymic)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := r.pool.QueryRow(ctx, query, a.Nickname, a.Name, a.Surname, a.Patronymic).Scan(&a.ID); err != nil {
		return nil, fmt.Errorf("postgres: create actor: %w", err)
	}
	return &a, nil
}

// ActorExists — быстрая проверка перед постановкой метрики в буфер.
func (r *DirectoryRepo) ActorExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: actor exists: %w", err)
	}
	return exists, nil
}
