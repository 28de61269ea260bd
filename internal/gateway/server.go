package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	r.Get("/ws/events", g.handleEvents())
	if g.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{}))
	}

	// Run state. Behind auth when auth is configured, public otherwise.
	r.Group(func(r chi.Router) {
		if g.config.RequestsPerMinute > 0 {
			r.Use(rateLimitMiddleware(newRateLimiter(g.config.RequestsPerMinute, time.Minute), g.logger))
		}
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.logger))
		}
		r.Get("/status", g.handleStatus())
		r.Route("/api", func(r chi.Router) {
			r.Get("/vehicles", g.handleVehicles())
			r.Get("/modules", g.handleModules())
		})
	})

	return r
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
