package glctx

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "glctx"

// Metrics counts context lifecycle events of a connection.
type Metrics struct {
	created   prometheus.Counter
	destroyed prometheus.Counter
	adopted   prometheus.Counter
	failed    *prometheus.CounterVec
	live      prometheus.Gauge
	creation  prometheus.Histogram
}

// NewMetrics makes the collectors and registers them with reg if it's not nil.
func NewMetrics(reg prometheus.Registerer, connection string) *Metrics {
	labels := prometheus.Labels{"connection": connection}
	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "contexts_created_total",
			Help: "GL contexts created.", ConstLabels: labels,
		}),
		destroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "contexts_destroyed_total",
			Help: "GL contexts destroyed.", ConstLabels: labels,
		}),
		adopted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "contexts_adopted_total",
			Help: "Externally created GL contexts adopted.", ConstLabels: labels,
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "failures_total",
			Help: "Failed native calls by operation.", ConstLabels: labels,
		}, []string{"op"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "contexts_live",
			Help: "GL contexts not destroyed yet.", ConstLabels: labels,
		}),
		creation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "context_creation_seconds",
			Help:        "Time spent creating a context, lock wait included.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.created, m.destroyed, m.adopted, m.failed, m.live, m.creation)
	}
	return m
}

func (m *Metrics) fail(op string) { m.failed.WithLabelValues(op).Inc() }
