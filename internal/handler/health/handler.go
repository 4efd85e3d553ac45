package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	started  time.Time
	entities []string
	draining atomic.Bool
}

// NewHandler reports the entities the service can canonicalize on /health.
func NewHandler(entities []string) *Handler {
	return &Handler{
		started:  time.Now(),
		entities: entities,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/health/live", h.LivenessCheck)
	r.GET("/health/ready", h.ReadinessCheck)
}

// Drain flips readiness off so load balancers stop routing before shutdown.
func (h *Handler) Drain() {
	h.draining.Store(true)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status":   "healthy",
			"entities": h.entities,
			"uptime":   time.Since(h.started).Round(time.Second).String(),
		},
	})
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.draining.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": "shutting down",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
