package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PollMetrics records display poll cycles.
type PollMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	changes  *prometheus.CounterVec
}

// NewPollMetrics registers the poll metrics on the provided registerer.
func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	if reg == nil {
		return &PollMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poll_duration_seconds",
		Help:    "Duration of display poll cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"display"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_success_total",
		Help: "Successful display poll cycles.",
	}, []string{"display"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_failure_total",
		Help: "Failed display poll cycles.",
	}, []string{"display"})
	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_changes_total",
		Help: "Poll cycles that observed a changed snapshot.",
	}, []string{"display"})
	reg.MustRegister(duration, success, failure, changes)
	return &PollMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		changes:  changes,
	}
}

// ObserveDuration records how long one poll took.
func (p *PollMetrics) ObserveDuration(display string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(display)).Observe(duration.Seconds())
}

func (p *PollMetrics) IncSuccess(display string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(display)).Inc()
}

func (p *PollMetrics) IncFailure(display string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(display)).Inc()
}

// IncChange counts a poll that replaced the cached snapshot.
func (p *PollMetrics) IncChange(display string) {
	if p == nil || p.changes == nil {
		return
	}
	p.changes.WithLabelValues(normalizeLabel(display)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
