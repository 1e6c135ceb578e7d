// Package health serves the readiness endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Gauge reports a current count, such as live rounds.
type Gauge func() int

type Handler struct {
	checks map[string]Checker
	gauges map[string]Gauge
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker, gauges map[string]Gauge) *Handler {
	return &Handler{checks: checks, gauges: gauges, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

// Response is the health report.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Gauges map[string]int    `json:"gauges,omitempty"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := Response{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for name, c := range h.checks {
		g.Go(func() error {
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				resp.Checks[name] = "error"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				return nil
			}
			resp.Checks[name] = "ok"
			return nil
		})
	}
	g.Wait()

	if len(h.gauges) > 0 {
		resp.Gauges = make(map[string]int, len(h.gauges))
		for name, gauge := range h.gauges {
			resp.Gauges[name] = gauge()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
