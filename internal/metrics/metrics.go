// Package metrics collects Prometheus metrics for HTTP traffic and
// authentication outcomes and exposes them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication events and outcomes.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventOAuth    = "oauth"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder is the metrics interface used by middleware and services.
type Recorder interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
	RecordAuthEvent(event, outcome string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	authEvents *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_auth_events_total",
			Help: "Authentication attempts by event and outcome.",
		}, []string{"event", "outcome"}),
	}

	reg.MustRegister(c.requests, c.duration, c.authEvents)
	return c
}

// ObserveHTTPRequest records one served request.
func (c *Collector) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordAuthEvent counts an authentication attempt.
func (c *Collector) RecordAuthEvent(event, outcome string) {
	c.authEvents.WithLabelValues(event, outcome).Inc()
}

// Nop discards all observations.
type Nop struct{}

func (Nop) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string, string)                        {}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
