package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-level Prometheus metrics. Domain packages keep
// their own Metrics structs next to their services.
type Metrics struct {
	RequestsInFlight prometheus.Gauge
	PanicsRecovered  prometheus.Counter
}

// New creates and registers the process-level metrics.
func New() *Metrics {
	return &Metrics{
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "confreg_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
		PanicsRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confreg_panics_recovered_total",
			Help: "Total number of panics recovered by middleware",
		}),
	}
}
