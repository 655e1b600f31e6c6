package api

import (
	"net/http"
	"time"

	"github.com/brightside-ai/assistant-backend/internal/api/respond"
	"github.com/brightside-ai/assistant-backend/internal/health"
)

// HealthHandler handles the liveness and readiness endpoints.
type HealthHandler struct {
	checker *health.ServiceHealthChecker
}

func NewHealthHandler(checker *health.ServiceHealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// CheckHealth handles GET /health. Always 200; the body is the stable
// liveness contract storefront deploys poll against.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckReadiness handles GET /health/ready. 503 while any dependency probe
// is failing, with the failing names listed.
func (h *HealthHandler) CheckReadiness(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil || !h.checker.IsHealthy() {
		detail := "health probes have not completed"
		if h.checker != nil {
			if down := h.checker.Unhealthy(); down != "" {
				detail = "unhealthy dependencies: " + down
			}
		}
		respond.WriteError(w, http.StatusServiceUnavailable, detail)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
