package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/luoxiaowei/chatflow/internal/domain"
	"github.com/luoxiaowei/chatflow/internal/service"
)

// Handler serves the chat API.
type Handler struct {
	service *service.Service
	logger  zerolog.Logger
}

func NewHandler(svc *service.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// RegisterRoutes registers all routes on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	e.POST("/agent", h.Agent)

	e.GET("/conversations", h.ListConversations)
	e.POST("/conversations", h.CreateConversation)
	e.GET("/conversations/:id", h.GetConversation)
	e.PUT("/conversations/:id", h.RenameConversation)
	e.DELETE("/conversations/:id", h.DeleteConversation)

	e.GET("/conversations/:id/messages", h.ListMessages)
	e.POST("/conversations/:id/messages", h.CreateMessage)
}

// Health returns a liveness response.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// errorJSON converts a service error into the uniform {error} body.
func (h *Handler) errorJSON(c echo.Context, err error) error {
	switch {
	case domain.IsBadRequest(err):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case domain.IsNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
