package gateway

import (
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string        `json:"status"` // "ok" or "idle"
	RunID  string        `json:"run_id,omitempty"`
	Uptime time.Duration `json:"uptime_ns"`
}

// handleHealth returns an http.HandlerFunc for GET /health. It always
// answers 200; "idle" means no simulation is attached.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "idle"}
		if !g.startedAt.IsZero() {
			resp.Uptime = time.Since(g.startedAt).Truncate(time.Millisecond)
		}
		if g.source != nil {
			resp.Status = "ok"
			resp.RunID = g.source.ID()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
