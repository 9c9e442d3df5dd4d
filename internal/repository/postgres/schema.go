package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema создает таблицы при первом запуске.
// Идемпотентно: на существующей базе ничего не меняет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		nickname    TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		surname     TEXT NOT NULL,
		patronymic  TEXT
	);

	CREATE TABLE IF NOT EXISTS metrics (
		id        BIGSERIAL PRIMARY KEY,
		user_id   BIGINT NOT NULL REFERENCES users(id),
		project   TEXT,
		timestamp TIMESTAMPTZ NOT NULL,
		added     INTEGER NOT NULL DEFAULT 0,
		modified  INTEGER NOT NULL DEFAULT 0,
		deleted   INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_user_time ON metrics (user_id, timestamp);`

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}
