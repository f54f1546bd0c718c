// Package v1 provides the caller-facing HTTP handlers.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kimyerak/guidely-chat/internal/service"
	"github.com/kimyerak/guidely-chat/internal/stream"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	stream  *stream.Server
}

// NewHandler creates a new handler. streamServer may be nil, in which case
// the stream endpoint answers 503.
func NewHandler(service *service.Service, streamServer *stream.Server) *Handler {
	return &Handler{
		service: service,
		stream:  streamServer,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Conversation API
	api.POST("/conversations", h.StartConversation)
	api.GET("/conversations/:session_id", h.GetConversation)
	api.POST("/conversations/:session_id/messages", h.PostMessage)
	api.POST("/conversations/:session_id/chat", h.Chat)
	api.PUT("/conversations/:session_id/end", h.EndConversation)
	api.GET("/conversations/:session_id/events", h.GetEvents)
	api.GET("/conversations/:session_id/stream", h.Stream)

	// Credits API
	api.POST("/ending-credits", h.GenerateCredits)

	// Auxiliary media API
	api.POST("/stt", h.Transcribe)
	api.POST("/tts", h.Synthesize)
	api.POST("/search-index/query", h.SearchIndex)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}
