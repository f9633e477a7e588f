package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthcover",
		Name:      "auth_register_total",
		Help:      "Registration attempts, by outcome.",
	}, []string{"outcome"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthcover",
		Name:      "auth_login_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})

	PasswordHashDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthcover",
		Name:      "password_hash_duration_seconds",
		Help:      "Time spent in bcrypt, by operation.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"op"})

	// Upstream metrics

	ABHARequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthcover",
		Name:      "abha_request_duration_seconds",
		Help:      "Latency of ABHA upstream lookups.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"status"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthcover",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthcover",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		LoginsTotal,
		PasswordHashDuration,
		ABHARequestDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// HealthReporter is satisfied by *health.Checker.
type HealthReporter interface {
	LivenessHandler() http.Handler
	ReadinessHandler() http.Handler
}

// NewServer serves /metrics plus the health probes on a separate port.
func NewServer(addr string, health HealthReporter) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health.LivenessHandler())
	mux.Handle("/readyz", health.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
