// Package metrics exports authencoding activity as Prometheus metrics.
//
// Attach it to a manager with [authencoding.WithObserver]:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	mgr, err := authencoding.NewDefaultManager(opts, authencoding.WithObserver(m))
//
// Only scheme identifiers and outcomes are recorded, never password material.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hasbyte1/go-authencoding/authencoding"
)

// Outcome label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultMismatch = "mismatch"
)

// Metrics implements [authencoding.Observer].
// Tracks encrypt and validate counts per scheme and their durations.
type Metrics struct {
	EncryptTotal  *prometheus.CounterVec
	ValidateTotal *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
}

var _ authencoding.Observer = (*Metrics)(nil)

// New creates a Metrics instance with every collector registered on reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EncryptTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authencoding_encrypt_total",
			Help: "Total number of password encryptions by scheme and result",
		}, []string{"scheme", "result"}),
		ValidateTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "authencoding_validate_total",
			Help: "Total number of password validations by scheme and result",
		}, []string{"scheme", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authencoding_operation_duration_seconds",
			Help:    "Duration of encrypt and validate operations by scheme",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"scheme", "operation"}),
	}
}

// ObserveEncrypt records one encryption.
func (m *Metrics) ObserveEncrypt(id authencoding.Identifier, elapsed time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.EncryptTotal.WithLabelValues(string(id), result).Inc()
	m.Duration.WithLabelValues(string(id), "encrypt").Observe(elapsed.Seconds())
}

// ObserveValidate records one validation. Cleartext comparisons are labelled
// with [authencoding.Cleartext].
func (m *Metrics) ObserveValidate(id authencoding.Identifier, elapsed time.Duration, ok bool) {
	result := ResultOK
	if !ok {
		result = ResultMismatch
	}
	m.ValidateTotal.WithLabelValues(string(id), result).Inc()
	m.Duration.WithLabelValues(string(id), "validate").Observe(elapsed.Seconds())
}
