package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	IdentitiesCreated  prometheus.Counter
	IdentitiesVerified prometheus.Counter
	IdentitiesRevoked  prometheus.Counter
	CounterOps         *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		IdentitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_identities_created_total",
			Help: "Total number of identity records created or replaced",
		}),
		IdentitiesVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_identities_verified_total",
			Help: "Total number of attestations recorded",
		}),
		IdentitiesRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_identities_revoked_total",
			Help: "Total number of revoke operations (including no-op revokes)",
		}),
		CounterOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attestry_counter_operations_total",
			Help: "Total number of counter operations by kind",
		}, []string{"op"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attestry_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// trip duplicate registration panics.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		IdentitiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "attestry_identities_created_total",
			Help: "Total number of identity records created or replaced",
		}),
		IdentitiesVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "attestry_identities_verified_total",
			Help: "Total number of attestations recorded",
		}),
		IdentitiesRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "attestry_identities_revoked_total",
			Help: "Total number of revoke operations (including no-op revokes)",
		}),
		CounterOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attestry_counter_operations_total",
			Help: "Total number of counter operations by kind",
		}, []string{"op"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attestry_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}
