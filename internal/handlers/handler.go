package handlers

import (
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hoizi89/advanced-switches/internal/logger"
	"github.com/hoizi89/advanced-switches/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket state stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerTrackerRoutes(api)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerTrackerRoutes(api *gin.RouterGroup) {
	tracker := api.Group("/tracker")
	{
		// Body example: {"timestamp":"2026-08-23T10:15:00Z","power_w":120.5,"energy_kwh":42.103,"switch_on":true}
		tracker.POST("/reading", h.postReading)
		tracker.POST("/on", h.requestOn)
		tracker.POST("/off", h.requestOff)
		tracker.POST("/reset", h.resetStats)
		tracker.GET("/state", h.getState)
		tracker.GET("/stats", h.getStats)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	api.GET("/sessions", h.getSessions)
	api.GET("/events", h.getEvents)
}
