package handler

import (
	"net/http"
	"time"
)

// Probe is the body of /health and /ready.
type Probe struct {
	Status   string `json:"status"`
	Degraded bool   `json:"degraded,omitempty"`
	Time     string `json:"time"`
}

func probe(status string) Probe {
	return Probe{Status: status, Time: time.Now().UTC().Format(time.RFC3339)}
}

// handleHealth answers as long as the process serves requests.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, probe("healthy"))
}

// handleReady answers 503 until the host has registered every component.
// A degraded merge is still ready but says so.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		h.writeJSON(w, r, http.StatusServiceUnavailable, probe("starting"))
		return
	}
	p := probe("ready")
	p.Degraded = h.kernel.Properties().Degraded()
	h.writeJSON(w, r, http.StatusOK, p)
}
