package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the conference batch jobs.
type Metrics struct {
	InvitationsSent   prometheus.Counter
	RemindersSent     prometheus.Counter
	ConfirmationsSent prometheus.Counter
	CodesBackfilled   prometheus.Counter
	BatchFailures     *prometheus.CounterVec
}

// New creates and registers the conference module metrics.
func New() *Metrics {
	return &Metrics{
		InvitationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_invitations_sent_total",
			Help: "Total invitation emails handed to the mailer",
		}),
		RemindersSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_reminders_sent_total",
			Help: "Total reminder emails handed to the mailer",
		}),
		ConfirmationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_confirmations_sent_total",
			Help: "Total confirmation emails handed to the mailer",
		}),
		CodesBackfilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_confirmation_codes_backfilled_total",
			Help: "Confirmation codes generated for registrations that were missing one",
		}),
		BatchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confreg_batch_failures_total",
			Help: "Per-recipient failures inside a batch job",
		}, []string{"job"}),
	}
}
