package core

import (
	"context"
	"time"

	"colonywork/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Reasons a persisted record is dropped during load.
const (
	DropUnknownKind = "unknown_kind"
	DropCorrupt     = "corrupt"
	DropDuplicateID = "duplicate_id"
)

// MetricsRecorder receives service operation timings and work order events.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	WorkOrderLoaded(kind domain.Kind)
	WorkOrderDropped(kind domain.Kind, reason string)
	WorkOrderClaimed(kind domain.Kind)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}
func (noopMetricsRecorder) WorkOrderLoaded(domain.Kind)                         {}
func (noopMetricsRecorder) WorkOrderDropped(domain.Kind, string)                {}
func (noopMetricsRecorder) WorkOrderClaimed(domain.Kind)                        {}

// PrometheusRecorder exports MetricsRecorder events as Prometheus collectors.
type PrometheusRecorder struct {
	operations *prometheus.HistogramVec
	loaded     *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	claimed    *prometheus.CounterVec
}

// NewPrometheusRecorder builds the collectors under namespace and registers
// them with reg.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		operations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		loaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workorders_loaded_total",
			Help:      "Work orders restored from persisted records.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workorders_dropped_total",
			Help:      "Persisted work order records discarded during load.",
		}, []string{"kind", "reason"}),
		claimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workorders_claimed_total",
			Help:      "Work orders claimed by a worker during a tick.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.loaded, r.dropped, r.claimed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records an operation duration labelled by outcome.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// WorkOrderLoaded counts a restored order.
func (r *PrometheusRecorder) WorkOrderLoaded(kind domain.Kind) {
	r.loaded.WithLabelValues(string(kind)).Inc()
}

// WorkOrderDropped counts a discarded record.
func (r *PrometheusRecorder) WorkOrderDropped(kind domain.Kind, reason string) {
	r.dropped.WithLabelValues(string(kind), reason).Inc()
}

// WorkOrderClaimed counts a claim made during a tick.
func (r *PrometheusRecorder) WorkOrderClaimed(kind domain.Kind) {
	r.claimed.WithLabelValues(string(kind)).Inc()
}
