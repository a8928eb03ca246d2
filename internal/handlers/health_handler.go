package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Check probes one dependency for the readiness route.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	log    *zap.Logger
}

func NewHealthHandler(checks map[string]Check, log *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

// Live answers as long as the process serves HTTP.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready runs every check and answers 503 when any of them fails.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			result[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
}
