package handlers

import (
	"context"
	"net/http"
	"time"

	"clouddrive/internal/utils"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
	started time.Time
}

func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		version: version,
		checks:  checks,
		started: time.Now(),
	}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Server is running")
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state, envelope := "healthy", utils.StatusSuccess
	if status != http.StatusOK {
		state, envelope = "degraded", utils.StatusError
	}
	c.JSON(status, utils.APIResponse{
		Status: envelope,
		Data: gin.H{
			"state":   state,
			"version": h.version,
			"uptime":  time.Since(h.started).Round(time.Second).String(),
			"checks":  results,
		},
		Timestamp: time.Now(),
	})
}
