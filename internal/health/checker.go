package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Dependency is one thing readiness depends on.
type Dependency struct {
	Name string
	Ping Pinger
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker reports liveness and per-dependency readiness, mirroring the
// latter into a healthcover_health_check_up gauge.
type Checker struct {
	deps   []Dependency
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

func NewChecker(logger *slog.Logger, reg prometheus.Registerer, deps ...Dependency) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "healthcover",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		deps:   deps,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency concurrently. One failure marks the
// whole instance down.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make([]CheckResult, len(c.deps))
	var wg sync.WaitGroup
	for i, dep := range c.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := dep.Ping.Ping(checkCtx); err != nil {
				c.logger.WarnContext(ctx, "health check failed", "dependency", dep.Name, "error", err)
				results[i] = CheckResult{Status: "down", Error: err.Error()}
				return
			}
			results[i] = CheckResult{Status: "up"}
		}()
	}
	wg.Wait()

	out := HealthResult{Status: "up", Checks: make(map[string]CheckResult, len(c.deps))}
	for i, dep := range c.deps {
		out.Checks[dep.Name] = results[i]
		if results[i].Status == "up" {
			c.gauge.WithLabelValues(dep.Name).Set(1)
			continue
		}
		out.Status = "down"
		c.gauge.WithLabelValues(dep.Name).Set(0)
	}
	return out
}

func (c *Checker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, c.Liveness(r.Context()))
	})
}

// ReadinessHandler answers 503 while any dependency is down.
func (c *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, c.Readiness(r.Context()))
	})
}

func writeResult(w http.ResponseWriter, result HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
