// Package metrics exposes Prometheus metrics for inscricao.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doodlesbykumbi/inscricao/pkg/registration"
)

const namespace = "inscricao"

var _ registration.Observer = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	RegistrationOps      *prometheus.CounterVec
	RegistrationDuration *prometheus.HistogramVec
	PersistenceErrors    *prometheus.CounterVec
	Logins               *prometheus.CounterVec
}

// New creates a registry and registers all metrics on it, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RegistrationOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_operations_total",
			Help:      "Registration operations by operation and result (outcome or error kind)",
		}, []string{"operation", "result"}),
		RegistrationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registration_operation_duration_seconds",
			Help:      "Time spent in registration operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		PersistenceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Registration writes that failed in the database",
		}, []string{"operation"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Completed wiki OAuth handshakes by result",
		}, []string{"result"}),
	}
}

// Observe records a finished registration operation.
func (m *Metrics) Observe(_ context.Context, ev registration.Event) {
	result := ev.Outcome.String()
	if ev.Failed() {
		kind := registration.KindOf(ev.Err)
		result = kind.String()
		if kind == registration.KindPersistence {
			m.PersistenceErrors.WithLabelValues(ev.Op).Inc()
		}
	}
	m.RegistrationOps.WithLabelValues(ev.Op, result).Inc()
	m.RegistrationDuration.WithLabelValues(ev.Op).Observe(ev.Duration.Seconds())
}

// IncrementLogins counts a finished handshake. Safe on a nil *Metrics.
func (m *Metrics) IncrementLogins(success bool) {
	if m == nil {
		return
	}
	if success {
		m.Logins.WithLabelValues("success").Inc()
		return
	}
	m.Logins.WithLabelValues("failure").Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
