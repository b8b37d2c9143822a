package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MatthijsVer/company-manager/internal/infrastructure/http/middleware"
	"github.com/MatthijsVer/company-manager/pkg/config"
	"github.com/MatthijsVer/company-manager/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	jwtManager        *jwt.Manager
	meetingHandler    *Meeting
	extractionHandler *Extraction
	documentHandler   *Document
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, jwtManager *jwt.Manager, meetingHandler *Meeting, extractionHandler *Extraction, documentHandler *Document) *Router {
	return &Router{
		cfg:               cfg,
		jwtManager:        jwtManager,
		meetingHandler:    meetingHandler,
		extractionHandler: extractionHandler,
		documentHandler:   documentHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	v1.Use(middleware.EchoAuth(rt.jwtManager))

	rt.setupMeetingRoutes(v1)
	rt.setupDocumentRoutes(v1)
}

// setupMeetingRoutes configures meeting pipeline routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("", rt.meetingHandler.Create)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.GET("/:id/tasks", rt.meetingHandler.Tasks)
	meetings.POST("/:id/transcribe", rt.meetingHandler.Transcribe)

	meetings.POST("/:id/extraction/preview", rt.extractionHandler.Preview)
	meetings.GET("/:id/extraction", rt.extractionHandler.Get)
	meetings.POST("/:id/extraction/commit", rt.extractionHandler.Commit)
}

// setupDocumentRoutes configures document routes
func (rt *Router) setupDocumentRoutes(g *echo.Group) {
	documents := g.Group("/documents")

	documents.GET("/:id/file", rt.documentHandler.GetFile)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
