package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/app"
	"github.com/yourusername/media-grab-go/internal/domain"
)

// FetchHandler handles fetch-request HTTP endpoints
type FetchHandler struct {
	pipeline *app.Pipeline
	repo     domain.FetchRequestRepository
	logger   *zap.Logger
}

// NewFetchHandler creates a new fetch handler
func NewFetchHandler(pipeline *app.Pipeline, repo domain.FetchRequestRepository, logger *zap.Logger) *FetchHandler {
	return &FetchHandler{
		pipeline: pipeline,
		repo:     repo,
		logger:   logger,
	}
}

// SubmitFetchRequest represents a request to fetch a URL
type SubmitFetchRequest struct {
	URL string `json:"url" binding:"required"`
}

// Submit handles POST /api/v1/fetches
func (h *FetchHandler) Submit(c *gin.Context) {
	var body SubmitFetchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.pipeline.Submit(body.URL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.UserMessage(err)})
			return
		}
		h.logger.Error("Failed to submit fetch request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, req)
}

// Get handles GET /api/v1/fetches/:id
func (h *FetchHandler) Get(c *gin.Context) {
	id := c.Param("id")

	req, err := h.repo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fetch request not found"})
		return
	}

	c.JSON(http.StatusOK, req)
}

// List handles GET /api/v1/fetches
func (h *FetchHandler) List(c *gin.Context) {
	filters := make(map[string]interface{})

	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if platform := c.Query("platform"); platform != "" {
		if !domain.ValidatePlatform(domain.Platform(platform)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + platform})
			return
		}
		filters["platform"] = platform
	}

	requests, err := h.repo.FindAll(filters)
	if err != nil {
		h.logger.Error("Failed to list fetch requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// Delete handles DELETE /api/v1/fetches/:id
func (h *FetchHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.repo.FindByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fetch request not found"})
		return
	}

	if err := h.repo.Delete(id); err != nil {
		h.logger.Error("Failed to delete fetch request", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "fetch request deleted"})
}

// StatsResponse combines persistent history totals with process counters.
type StatsResponse struct {
	History  *domain.FetchStats   `json:"history"`
	Counters app.CountersSnapshot `json:"counters"`
}

// Stats handles GET /api/v1/fetches/stats
func (h *FetchHandler) Stats(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		History:  stats,
		Counters: h.pipeline.Counters().Snapshot(),
	})
}
