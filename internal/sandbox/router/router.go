package router

import (
	"bulkdelete/internal/sandbox/handler"

	"github.com/labstack/echo/v4"
)

type AuthConfig struct {
	APIKey      string
	BearerToken string
}

func RegisterRoutes(e *echo.Echo, h *handler.ResourceHandler, auth AuthConfig) {
	// Health Check
	e.GET("/health", handler.HealthCheck)

	v1 := e.Group("/api/v1")
	v1.Use(handler.RequestIDMiddleware)
	v1.Use(handler.AuthMiddleware(auth.APIKey, auth.BearerToken))

	v1.POST("/resources", h.PostResources)
	v1.GET("/resources/:id", h.GetResource)
	v1.DELETE("/resources/:id", h.DeleteResource)
}
