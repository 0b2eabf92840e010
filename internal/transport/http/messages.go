package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luoxiaowei/chatflow/internal/domain"
)

// MessageRequest is the body for appending a message.
type MessageRequest struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// ListMessages returns a conversation's messages in creation order.
// GET /conversations/:id/messages
func (h *Handler) ListMessages(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
	}
	msgs, err := h.service.ListMessages(c.Request().Context(), id)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// CreateMessage appends a message to a conversation.
// POST /conversations/:id/messages
func (h *Handler) CreateMessage(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	msg, err := h.service.AppendMessage(c.Request().Context(), id, req.Role, req.Content)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}
