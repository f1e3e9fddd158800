package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/library-api/internal/database"
	"github.com/EgehanKilicarslan/library-api/internal/response"
)

// HealthCheck is one named dependency probe
type HealthCheck func(ctx context.Context) error

// HealthHandler reports whether the service and its dependencies respond
type HealthHandler struct {
	db     database.Pinger
	checks map[string]HealthCheck
	logger *slog.Logger
}

// NewHealthHandler creates a health handler that always pings the database.
// Extra checks (Redis) are reported but only the database decides the status.
func NewHealthHandler(db database.Pinger, checks map[string]HealthCheck, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		checks: checks,
		logger: logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	status := gin.H{"database": "ok"}
	if err := database.Ping(ctx, h.db); err != nil {
		h.logger.Error("❌ [HealthHandler] Database unreachable", "error", err)
		response.Error(c, http.StatusServiceUnavailable, err, response.ErrorMessage("Database is unavailable"))
		return
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("⚠️ [HealthHandler] Dependency degraded", "dependency", name, "error", err)
			status[name] = "unavailable"
			continue
		}
		status[name] = "ok"
	}

	response.Success(c, http.StatusOK, status, response.SuccessMessage("Service is healthy"))
}
