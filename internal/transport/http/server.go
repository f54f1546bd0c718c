// Package http provides the HTTP server implementation for the orchestrator.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kimyerak/guidely-chat/internal/service"
	"github.com/kimyerak/guidely-chat/internal/stream"
	v1 "github.com/kimyerak/guidely-chat/internal/transport/http/v1"
)

// NewServer creates and configures the caller-facing HTTP server.
func NewServer(svc *service.Service, streamServer *stream.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = v1.HTTPErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, streamServer)

	// Register Routes
	v1Handler.RegisterRoutes(e)

	return e
}
