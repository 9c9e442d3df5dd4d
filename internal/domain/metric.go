package domain

import "time"

// Metric — запись об изменениях элементов модели, как она хранится в базе.
// Формат на проводе асимметричен: плагин шлёт user_id, читатель получает
// вложенный объект user с никнеймом (см. MetricOut).
type Metric struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
	Added     int       `json:"added"`
	Modified  int       `json:"modified"`
	Deleted   int       `json:"deleted"`
}

// MetricIn — входящая запись от плагина (POST /metrics/).
type MetricIn struct {
	UserID    int64     `json:"user_id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
	Added     int       `json:"added"`
	Modified  int       `json:"modified"`
	Deleted   int       `json:"deleted"`
}

// MetricOut — исходящая запись для потребителей (GET /metrics/).
type MetricOut struct {
	ID        int64     `json:"id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
	Added     int       `json:"added"`
	Modified  int       `json:"modified"`
	Deleted   int       `json:"deleted"`
	User      ActorRef  `json:"user"`
}

// MetricsSummary — суммарная статистика за период (GET /metrics/summary/).
type MetricsSummary struct {
	UserID        *int64     `json:"user_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	TotalAdded    int64      `json:"total_added"`
	TotalModified int64      `json:"total_modified"`
	TotalDeleted  int64      `json:"total_deleted"`
	RecordsCount  int64      `json:"records_count"`
}

// MetricsFilter — необязательные фильтры выборки метрик.
type MetricsFilter struct {
	UserID    *int64
	StartDate *time.Time
	EndDate   *time.Time
}
