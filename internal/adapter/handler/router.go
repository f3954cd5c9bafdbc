package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/pkg/config"
	"github.com/inkline-team/inkline/pkg/tabtoken"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	tokens         *tabtoken.Manager
	tabHandler     *Tab
	lessonHandler  *Lesson
	sessionHandler *Session
	channelHandler *Channel
	uploadHandler  *Upload
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	tokens *tabtoken.Manager,
	tabHandler *Tab,
	lessonHandler *Lesson,
	sessionHandler *Session,
	channelHandler *Channel,
	uploadHandler *Upload,
) *Router {
	return &Router{
		cfg:            cfg,
		tokens:         tokens,
		tabHandler:     tabHandler,
		lessonHandler:  lessonHandler,
		sessionHandler: sessionHandler,
		channelHandler: channelHandler,
		uploadHandler:  uploadHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupTabRoutes(v1)
	rt.setupLessonRoutes(v1)
	rt.setupSessionRoutes(v1)
	rt.setupUploadRoutes(v1)
}

// setupTabRoutes configures tab identity routes
func (rt *Router) setupTabRoutes(g *echo.Group) {
	g.POST("/tabs", rt.tabHandler.Register)
}

// setupLessonRoutes configures lesson ingestion and playback routes
func (rt *Router) setupLessonRoutes(g *echo.Group) {
	lessons := g.Group("/lessons")

	lessons.POST("", rt.lessonHandler.Ingest)
	lessons.GET("", rt.lessonHandler.List)
	lessons.GET("/:id", rt.lessonHandler.Get)
	lessons.GET("/:id/schedule", rt.lessonHandler.Schedule)
	lessons.DELETE("/:id", rt.lessonHandler.Delete)

	// The playback channel verifies the tab token itself: browsers cannot
	// set headers on websocket dials, so the token arrives as a query
	// parameter.
	lessons.GET("/:id/channel", rt.channelHandler.Serve)

	g.GET("/placements", rt.lessonHandler.Placement)
}

// setupSessionRoutes configures session record and ownership routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	sessions := g.Group("/lessons/:id", TabAuth(rt.tokens))

	sessions.GET("/ownership", rt.sessionHandler.Ownership)
	sessions.POST("/session/claim", rt.sessionHandler.Claim)
	sessions.POST("/session/abandon", rt.sessionHandler.Abandon)
	sessions.GET("/session", rt.sessionHandler.Get)
	sessions.PUT("/session", rt.sessionHandler.Save)
	sessions.DELETE("/session", rt.sessionHandler.Clear)
}

// setupUploadRoutes configures content-pipeline upload routes
func (rt *Router) setupUploadRoutes(g *echo.Group) {
	g.POST("/uploads", rt.uploadHandler.Create)
	g.GET("/uploads", rt.uploadHandler.List)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
