package chat

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/session"
)

type Handler struct {
	relay *Relay
}

func NewHandler(relay *Relay) *Handler {
	return &Handler{relay: relay}
}

// RegisterRoutes mounts the chat endpoints on the /api/agent group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/chat", h.Send)
	g.GET("/chat", h.GetTranscript)
	g.DELETE("/chat", h.Clear)
}

type sendRequest struct {
	Message string `json:"message"`
}

func (h *Handler) Send(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sid := session.FromContext(c)
	msg, err := h.relay.Send(c.Request().Context(), sid, req.Message)
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrReplyPending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"response": msg.Content,
		"messages": h.relay.Transcript(sid),
	})
}

func (h *Handler) GetTranscript(c echo.Context) error {
	sid := session.FromContext(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": h.relay.Transcript(sid),
		"pending":  h.relay.Pending(sid),
	})
}

func (h *Handler) Clear(c echo.Context) error {
	h.relay.Clear(session.FromContext(c))
	return c.NoContent(http.StatusNoContent)
}
