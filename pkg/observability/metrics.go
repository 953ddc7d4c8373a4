package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records dispatch counts and latencies.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inflight   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jseval_dispatches_total",
				Help: "Total number of scripts dispatched, by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jseval_dispatch_duration_seconds",
				Help:    "Duration of dispatches until the channel replied",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"mode"},
		),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jseval_dispatches_in_flight",
			Help: "Dispatches waiting for a reply",
		}),
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.duration, m.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Hooks returns hooks feeding the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			m.inflight.Inc()
		},
		OnComplete: func(ctx context.Context, e *domain.DispatchEvent) {
			m.inflight.Dec()
			outcome := "success"
			if e.Err != nil {
				outcome = "error"
			}
			m.dispatches.WithLabelValues(string(e.Mode), outcome).Inc()
			m.duration.WithLabelValues(string(e.Mode)).Observe(e.Duration.Seconds())
		},
	}
}
