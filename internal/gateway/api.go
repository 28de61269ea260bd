package gateway

import (
	"net/http"

	"github.com/flemzord/junction/internal/core"
	"github.com/flemzord/junction/internal/intersection"
)

// handleVehicles lists the registered vehicles in arrival order.
func (g *Gateway) handleVehicles() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.source == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no simulation attached"})
			return
		}
		records := g.source.Records()
		if records == nil {
			records = []intersection.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

type moduleJSON struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
}

// handleModules lists every module compiled into the binary.
func (g *Gateway) handleModules() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		mods := core.GetModules()
		out := make([]moduleJSON, 0, len(mods))
		for _, m := range mods {
			out = append(out, moduleJSON{ID: string(m.ID), Namespace: m.ID.Namespace()})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
