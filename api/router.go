package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/api/handlers"
	"github.com/yourusername/media-grab-go/api/middleware"
	"github.com/yourusername/media-grab-go/internal/app"
)

// SetupRouter builds the JSON API router.
func SetupRouter(a *app.App, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(a.Worker)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		fetchHandler := handlers.NewFetchHandler(a.Pipeline, a.Repo, log)
		fetches := v1.Group("/fetches")
		{
			fetches.POST("", fetchHandler.Submit)
			fetches.GET("", fetchHandler.List)
			fetches.GET("/stats", fetchHandler.Stats)
			fetches.GET("/:id", fetchHandler.Get)
			fetches.DELETE("/:id", fetchHandler.Delete)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
