package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luoxiaowei/chatflow/internal/domain"
)

type agentFragment struct {
	Content string `json:"content"`
}

// Agent runs one chat turn and streams the assistant's reply as SSE.
// POST /agent
func (h *Handler) Agent(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	reader, err := h.service.Handle(ctx, &req)
	if err != nil {
		return h.errorJSON(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return errors.New("streaming not supported")
	}

	for {
		chunk, err := reader.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// Headers are gone; all we can do is stop the stream.
				h.logger.Warn().Err(err).Msg("agent stream ended early")
				return nil
			}
			break
		}
		data, err := json.Marshal(agentFragment{Content: chunk.Delta})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return nil
		}
		flusher.Flush()
	}

	fmt.Fprint(c.Response().Writer, "data: [DONE]\n\n")
	flusher.Flush()
	return nil
}
