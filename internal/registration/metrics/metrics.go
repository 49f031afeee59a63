package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	RegistrationsCreated   prometheus.Counter
	RegistrationsUpdated   prometheus.Counter
	RegistrationsCancelled prometheus.Counter
	CodeCollisions         prometheus.Counter
}

// New creates and registers the registration module metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_registrations_created_total",
			Help: "Total number of new registrations persisted",
		}),
		RegistrationsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_registrations_updated_total",
			Help: "Total number of registration updates persisted",
		}),
		RegistrationsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_registrations_cancelled_total",
			Help: "Total number of registrations cancelled",
		}),
		CodeCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_confirmation_code_collisions_total",
			Help: "Confirmation code candidates rejected as duplicates",
		}),
	}
}

// IncrementCreated records a persisted new registration.
func (m *Metrics) IncrementCreated() { m.RegistrationsCreated.Inc() }

// IncrementUpdated records a persisted registration update.
func (m *Metrics) IncrementUpdated() { m.RegistrationsUpdated.Inc() }

// IncrementCancelled records a cancellation.
func (m *Metrics) IncrementCancelled() { m.RegistrationsCancelled.Inc() }

// IncrementCodeCollision records a rejected confirmation code candidate.
func (m *Metrics) IncrementCodeCollision() { m.CodeCollisions.Inc() }
