package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — операционные счётчики сайдкара.
type Metrics struct {
	// Traffic: успешно доставленные метрики
	Dispatched prometheus.Counter

	// Errors: потерянные отправки по этапам (resolve, submit)
	Failures *prometheus.CounterVec

	// Saturation: сколько отправок летит прямо сейчас
	InFlight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern — без регистратора метрики живут в локальном,
	// никуда не подключённом реестре
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Dispatched: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "revitmon_agent_dispatched_total",
			Help: "Total number of metrics delivered to the collector.",
		}),
		Failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "revitmon_agent_failures_total",
			Help: "Total number of dropped transmissions by stage.",
		}, []string{"stage"}),
		InFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "revitmon_agent_inflight_transmissions",
			Help: "Number of transmissions currently in flight.",
		}),
	}
}
