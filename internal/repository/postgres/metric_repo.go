package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// MetricRepo — хранилище записей активности (таблица metrics).
type MetricRepo struct {
	pool *pgxpool.Pool
}

func NewMetricRepo(pool *pgxpool.Pool) *MetricRepo {
	return &MetricRepo{pool: pool}
}

// WriteBatch сохраняет пачку метрик одним INSERT.
// Запрос строится динамически под размер пачки.
func (r *MetricRepo) WriteBatch(ctx context.Context, metrics []domain.MetricIn) error {
	if len(metrics) == 0 {
		return nil
	}

	const numFields = 6
	placeholders := make([]string, 0, len(metrics))
	vals := make([]interface{}, 0, len(metrics)*numFields)

	for i, m := range metrics {
		p := i * numFields
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			p+1, p+2, p+3, p+4, p+5, p+6))
		vals = append(vals, m.UserID, m.Project, m.Timestamp, m.Added, m.Modified, m.Deleted)
	}

	query := fmt.Sprintf(
		"INSERT INTO metrics (user_id, project, timestamp, added, modified, deleted) VALUES %s",
		strings.Join(placeholders, ","),
	)

	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: write metrics batch: %w", err)
	}
	return nil
}

// ListMetrics возвращает записи с вложенным пользователем.
// Все фильтры необязательны; период применяется только целиком (обе границы).
func (r *MetricRepo) ListMetrics(ctx context.Context, f domain.MetricsFilter) ([]domain.MetricOut, error) {
	query := `
		SELECT m.id, COALESCE(m.project, ''), m.timestamp, m.added, m.modified, m.deleted, u.nickname
		FROM metrics m
		JOIN users u ON u.id = m.user_id
		WHERE ($1::bigint IS NULL OR m.user_id = $1)
		  AND ($2::timestamptz IS NULL OR $3::timestamptz IS NULL
		       OR (m.timestamp >= $2 AND m.timestamp <= $3))
		ORDER BY m.id`

	rows, err := r.pool.Query(ctx, query, f.UserID, f.StartDate, f.EndDate)
	if err != nil {
		return nil, fmt.Errorf("postgres: list metrics: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MetricOut, 0)
	for rows.Next() {
		var m domain.MetricOut
		if err := rows.Scan(&m.ID, &m.Project, &m.Timestamp, &m.Added, &m.Modified, &m.Deleted, &m.User.Nickname); err != nil {
			return nil, fmt.Errorf("postgres: scan metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Summarize считает суммарные счётчики на стороне базы.
func (r *MetricRepo) Summarize(ctx context.Context, f domain.MetricsFilter) (*domain.MetricsSummary, error) {
	query := `
		SELECT COALESCE(SUM(added), 0), COALESCE(SUM(modified), 0), COALESCE(SUM(deleted), 0), COUNT(*)
		FROM metrics
		WHERE ($1::bigint IS NULL OR user_id = $1)
		  AND ($2::timestamptz IS NULL OR $3::timestamptz IS NULL
		       OR (timestamp >= $2 AND timestamp <= $3))`

	s := &domain.MetricsSummary{
		UserID:    f.UserID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
	err := r.pool.QueryRow(ctx, query, f.UserID, f.StartDate, f.EndDate).Scan(
		&s.TotalAdded, &s.TotalModified, &s.TotalDeleted, &s.RecordsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: summarize metrics: %w", err)
	}
	return s, nil
}
