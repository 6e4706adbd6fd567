package handlers

import (
	"net/http"

	"vodsubmit/internal/httpkit"
)

// Health performs a health check of the service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	log := h.log.FromContext(r.Context())

	health := map[string]any{
		"status":  "ok",
		"service": "vodsubmit-api",
		"version": "0.1.0",
	}

	// Deep check verifies the job template parses
	if r.URL.Query().Get("deep") == "true" {
		checks := map[string]any{
			"template": h.checkTemplate(),
		}
		health["checks"] = checks

		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					log.Warn("health check degraded", "checks", checks)
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, 200, health)
}

func (h *Handler) checkTemplate() map[string]any {
	result := map[string]any{"status": "ok"}

	if h.templates == nil {
		result["status"] = "error"
		result["error"] = "no template loader configured"
		return result
	}
	if _, err := h.templates.Load(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	return result
}
