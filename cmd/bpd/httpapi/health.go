package httpapi

import (
	"net/http"

	"github.com/dtn-stack/bplib/pkg/channel"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	channels map[string]*channel.Channel
}

// NewHealthHandler creates a health handler over the daemon's open
// channels. channels may be empty, in which case Readiness reports
// unhealthy.
func NewHealthHandler(channels map[string]*channel.Channel) *HealthHandler {
	return &HealthHandler{channels: channels}
}

// Liveness handles GET /health: it always succeeds once the process is
// serving HTTP, matching a Kubernetes liveness probe's expectations.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{"service": "bpd"}))
}

// Readiness handles GET /health/ready: ready means at least one channel is
// open.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.channels) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no channels configured"))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]int{"channels": len(h.channels)}))
}
