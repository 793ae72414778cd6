package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
	logger logger.Interface
}

func NewHealthHandler(checks map[string]Pinger, logger logger.Interface) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// HealthCheck handles GET /health
//
//	@Summary		Health check
//	@Description	Reports whether the database and redis are reachable
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	utils.APIResponse
//	@Failure		503	{object}	utils.APIResponse
//	@Router			/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.logger.Warnw("health check failed", "component", name, "error", err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "service unhealthy",
			Data:    status,
		})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "ok", status)
}
