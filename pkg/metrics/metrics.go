// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets — границы гистограмм задержек в секундах
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Metrics хранит коллекторы приложения. Нулевой указатель допустим: методы ничего не делают.
type Metrics struct {
	votes          *prometheus.CounterVec
	reports        *prometheus.CounterVec
	routing        *prometheus.HistogramVec
	avoidanceZones prometheus.Histogram
}

// New создаёт и регистрирует коллекторы в переданном регистре
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safe_route",
			Name:      "votes_total",
			Help:      "Votes processed by the validation state machine, by result.",
		}, []string{"result"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safe_route",
			Name:      "reports_created_total",
			Help:      "Hazard reports created, by classification and initial validity.",
		}, []string{"classification", "valid"}),
		routing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "safe_route",
			Name:      "routing_request_duration_seconds",
			Help:      "Latency of routing engine calls.",
			Buckets:   DefaultBuckets,
		}, []string{"status"}),
		avoidanceZones: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "safe_route",
			Name:      "avoidance_zones",
			Help:      "Number of avoidance polygons sent per routing request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.votes, m.reports, m.routing, m.avoidanceZones)
	return m
}

func (m *Metrics) VoteProcessed(result string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(result).Inc()
}

func (m *Metrics) ReportCreated(classification string, valid bool) {
	if m == nil {
		return
	}
	v := "false"
	if valid {
		v = "true"
	}
	m.reports.WithLabelValues(classification, v).Inc()
}

func (m *Metrics) RoutingObserved(status string, elapsed time.Duration, zones int) {
	if m == nil {
		return
	}
	m.routing.WithLabelValues(status).Observe(elapsed.Seconds())
	m.avoidanceZones.Observe(float64(zones))
}
