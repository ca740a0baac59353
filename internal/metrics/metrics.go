// Package metrics registers the application's Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsTotal    prometheus.Counter
	RegistrationsRejected *prometheus.CounterVec
	CancellationsTotal    prometheus.Counter
	CheckInsTotal         prometheus.Counter
	DuplicateScansTotal   prometheus.Counter
	ScansRejected         *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "campusevents_registrations_total",
			Help: "Total number of registrations admitted",
		}),
		RegistrationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campusevents_registrations_rejected_total",
			Help: "Registration attempts rejected, by reason",
		}, []string{"reason"}),
		CancellationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "campusevents_cancellations_total",
			Help: "Total number of registrations cancelled",
		}),
		CheckInsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "campusevents_checkins_total",
			Help: "Total number of attendances confirmed by scan",
		}),
		DuplicateScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "campusevents_duplicate_scans_total",
			Help: "Scans of an already checked-in registration",
		}),
		ScansRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campusevents_scans_rejected_total",
			Help: "Scan attempts rejected, by reason",
		}, []string{"reason"}),
	}
}
