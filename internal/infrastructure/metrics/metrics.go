package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Claim results
const (
	ClaimClaimed = "claimed"
	ClaimEmpty   = "empty"
	ClaimError   = "error"
)

// Collector owns the service's Prometheus registry. Each instance has its
// own registry so tests can build collectors freely.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	claimsTotal         *prometheus.CounterVec
	consultationsTotal  *prometheus.CounterVec
	sweepReleasedTotal  prometheus.Counter
	registrationsTotal  prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noq_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noq_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		claimsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noq_queue_claims_total",
				Help: "Claim-next attempts by result",
			},
			[]string{"result"},
		),
		consultationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noq_consultations_total",
				Help: "Finalized consultations by outcome",
			},
			[]string{"outcome"},
		),
		sweepReleasedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noq_sweep_released_total",
			Help: "Patients released back to waiting by the startup sweep",
		}),
		registrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noq_patient_registrations_total",
			Help: "Registered patients",
		}),
	}

	c.registry.MustRegister(
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.claimsTotal,
		c.consultationsTotal,
		c.sweepReleasedTotal,
		c.registrationsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) RecordClaim(result string) {
	c.claimsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordConsultation(outcome string) {
	c.consultationsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSweep(released int64) {
	c.sweepReleasedTotal.Add(float64(released))
}

func (c *Collector) RecordRegistration() {
	c.registrationsTotal.Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the scrape endpoint for this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
