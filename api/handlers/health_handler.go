package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/media-grab-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	worker *app.Worker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(worker *app.Worker) *HealthHandler {
	return &HealthHandler{
		worker: worker,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Worker  struct {
		Running bool `json:"running"`
	} `json:"worker"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	response.Worker.Running = h.worker.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.worker.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "queue worker not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
