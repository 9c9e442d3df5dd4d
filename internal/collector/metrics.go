package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — операционные показатели коллектора.
type Metrics struct {
	// Latency: длительность обработки HTTP-запросов
	RequestDuration *prometheus.HistogramVec

	// Traffic: записи, дошедшие до базы
	IngestedTotal prometheus.Counter

	// Errors: записи, сброшенные при перегрузе буфера
	DroppedTotal prometheus.Counter

	// Справочник: лениво созданные пользователи
	ActorsCreated prometheus.Counter

	// Saturation: заполненность буфера приёма (backpressure)
	BufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern — без регистратора используем локальный реестр
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "revitmon_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),

		IngestedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "revitmon_metrics_ingested_total",
			Help: "Total number of metric records persisted.",
		}),

		DroppedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "revitmon_metrics_dropped_total",
			Help: "Total number of metric records shed on buffer overflow.",
		}),

		ActorsCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "revitmon_actors_created_total",
			Help: "Total number of directory records created lazily.",
		}),

		BufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "revitmon_ingest_buffer_utilization",
			Help: "Current number of records in the ingest buffer.",
		}),
	}
}
