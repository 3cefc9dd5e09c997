package cent

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var metricsNamespace = "cent"

type metrics struct {
	deliveries *prometheus.CounterVec
	failovers  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	m := &metrics{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transport",
			Name:      "deliveries_total",
			Help:      "Number of batch deliveries by transport and result.",
		}, []string{"transport", "result"}),
		failovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "chain",
			Name:      "failovers_total",
			Help:      "Number of times the chain moved past a failed transport.",
		}, []string{"from"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "transport",
			Name:      "delivery_duration_seconds",
			Buckets:   prometheus.DefBuckets,
			Help:      "Histogram of batch delivery duration by transport.",
		}, []string{"transport"}),
	}
	if r == nil {
		return m
	}
	m.deliveries = register(r, m.deliveries)
	m.failovers = register(r, m.failovers)
	m.duration = register(r, m.duration)
	return m
}

// register returns already registered collector when another client shares
// the registerer.
func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observe(started time.Time, transport string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.deliveries.WithLabelValues(transport, result).Inc()
	m.duration.WithLabelValues(transport).Observe(time.Since(started).Seconds())
}

func (m *metrics) failover(from string) {
	m.failovers.WithLabelValues(from).Inc()
}
