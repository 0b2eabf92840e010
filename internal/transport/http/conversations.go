package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ConversationRequest is the body for creating or renaming a conversation.
type ConversationRequest struct {
	Title string `json:"title"`
}

// ListConversations lists all conversations, newest-updated first.
// GET /conversations
func (h *Handler) ListConversations(c echo.Context) error {
	convs, err := h.service.ListConversations(c.Request().Context())
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, convs)
}

// CreateConversation creates a conversation.
// POST /conversations
func (h *Handler) CreateConversation(c echo.Context) error {
	var req ConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	conv, err := h.service.CreateConversation(c.Request().Context(), req.Title)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, conv)
}

// GetConversation returns one conversation.
// GET /conversations/:id
func (h *Handler) GetConversation(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
	}
	conv, err := h.service.GetConversation(c.Request().Context(), id)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// RenameConversation updates a conversation's title.
// PUT /conversations/:id
func (h *Handler) RenameConversation(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
	}
	var req ConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	conv, err := h.service.RenameConversation(c.Request().Context(), id, req.Title)
	if err != nil {
		return h.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// DeleteConversation deletes a conversation and its messages.
// DELETE /conversations/:id
func (h *Handler) DeleteConversation(c echo.Context) error {
	id, err := conversationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
	}
	if err := h.service.DeleteConversation(c.Request().Context(), id); err != nil {
		return h.errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func conversationID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
