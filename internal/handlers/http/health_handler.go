package http

import (
	"context"
	"net/http"
	"time"

	"throttlelab/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker   *monitoring.HealthChecker
	startTime time.Time
}

func NewHealthHandler(checker *monitoring.HealthChecker) *HealthHandler {
	return &HealthHandler{
		checker:   checker,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) SetupRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// Ready reports whether both experiment stores answer.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := h.checker.CheckAll(ctx)
	if !status.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "not_ready",
			"timestamp":    status.Timestamp,
			"dependencies": status.Checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"timestamp":    status.Timestamp,
		"dependencies": status.Checks,
	})
}
