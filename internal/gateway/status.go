package gateway

import (
	"net/http"

	"github.com/flemzord/junction/internal/intersection"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	RunID        string                `json:"run_id"`
	Intersection intersection.Snapshot `json:"intersection"`
	Events       MetricsSnapshot       `json:"events"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.source == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no simulation attached"})
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{
			RunID:        g.source.ID(),
			Intersection: g.source.Snapshot(),
			Events:       g.metrics.Snapshot(),
		})
	}
}
