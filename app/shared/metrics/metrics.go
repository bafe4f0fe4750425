package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the outcome of service operations and of the
// individual steps of a partie orchestration.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordStep(ctx context.Context, step string, success bool, d time.Duration)
}

// Prometheus is the OperationMetrics implementation exposed on /metrics.
type Prometheus struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	steps      *prometheus.HistogramVec
}

// NewPrometheus registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	m := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"service", "operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orchestration_step_duration_seconds",
			Help:      "Partie orchestration step latency by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.durations, m.steps} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (m *Prometheus) RecordStep(_ context.Context, step string, success bool, d time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.steps.WithLabelValues(step, outcome).Observe(d.Seconds())
}

// Noop discards everything.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (Noop) RecordStep(context.Context, string, bool, time.Duration)                {}
