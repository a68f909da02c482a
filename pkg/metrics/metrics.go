// Package metrics exposes Prometheus instruments for binding and
// serialization. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the instruments of one mold instance.
type Recorder struct {
	conversions    *prometheus.CounterVec
	bindings       *prometheus.CounterVec
	serializations *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// New creates the instruments and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mold_conversions_total",
				Help: "Parameter conversions by target kind and result. The result is ok or the failure message key.",
			},
			[]string{"kind", "result"},
		),
		bindings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mold_bindings_total",
				Help: "Bind calls by root type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		serializations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mold_serializations_total",
				Help: "Serialize calls by format and outcome.",
			},
			[]string{"format", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mold_serialize_duration_seconds",
				Help:    "Duration of serialize calls.",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"format"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.conversions, r.bindings, r.serializations, r.duration)
	}
	return r
}

// Conversion counts one conversion. An empty key means success.
func (r *Recorder) Conversion(kind, key string) {
	if r == nil {
		return
	}
	if key == "" {
		key = OutcomeOK
	}
	r.conversions.WithLabelValues(kind, key).Inc()
}

// Binding counts one Bind call.
func (r *Recorder) Binding(typ string, failed bool) {
	if r == nil {
		return
	}
	r.bindings.WithLabelValues(typ, outcome(failed)).Inc()
}

// Serialization counts one serialize call and observes its duration.
func (r *Recorder) Serialization(format string, failed bool, d time.Duration) {
	if r == nil {
		return
	}
	r.serializations.WithLabelValues(format, outcome(failed)).Inc()
	r.duration.WithLabelValues(format).Observe(d.Seconds())
}

func outcome(failed bool) string {
	if failed {
		return OutcomeError
	}
	return OutcomeOK
}
