package infra

// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
const RedisNamespace = "revitmon"

// Каналы Pub/Sub (события)
const (
	// RedisChanMetricsIngested — сигнал о записи новой пачки метрик в базу.
	// Дашборд подписывается на него и перечитывает данные без участия оператора.
	RedisChanMetricsIngested = RedisNamespace + ":metrics:ingested"
)
