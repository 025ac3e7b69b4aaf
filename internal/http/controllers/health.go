package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

type HealthController struct {
	db Pinger
}

// Health: GET /health. 503 si el backend no responde.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("health check failed", logger.Err(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
