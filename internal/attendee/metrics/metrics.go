package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendee module.
type Metrics struct {
	EmployeesProvisioned prometheus.Counter
	DirectoryLookups     *prometheus.CounterVec
}

// New creates and registers the attendee module metrics.
func New() *Metrics {
	return &Metrics{
		EmployeesProvisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_employees_provisioned_total",
			Help: "Total number of employees provisioned from the directory",
		}),
		DirectoryLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confreg_directory_lookups_total",
			Help: "Directory lookups by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementProvisioned records a successful directory-backed provisioning.
func (m *Metrics) IncrementProvisioned() {
	m.EmployeesProvisioned.Inc()
}

// ObserveDirectoryLookup records a directory lookup outcome.
func (m *Metrics) ObserveDirectoryLookup(outcome string) {
	m.DirectoryLookups.WithLabelValues(outcome).Inc()
}
