package prompts

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/session"
)

type Handler struct {
	lib        *Library
	dispatcher *Dispatcher
}

func NewHandler(lib *Library, dispatcher *Dispatcher) *Handler {
	return &Handler{lib: lib, dispatcher: dispatcher}
}

// RegisterRoutes mounts the prompt endpoints on the /api/agent group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/prompts", h.ListPrompts)
	g.POST("/execute", h.Execute)
	g.GET("/execution", h.GetExecution)
}

// PageHandler returns a handler serving one page's grouped catalog.
func (h *Handler) PageHandler(page Page) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.writeGroups(c, page)
	}
}

func (h *Handler) ListPrompts(c echo.Context) error {
	page := Page(c.QueryParam("page"))
	if page == "" {
		page = PageDashboard
	}
	return h.writeGroups(c, page)
}

func (h *Handler) writeGroups(c echo.Context, page Page) error {
	cat, err := h.lib.Catalog(page)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"page":    cat.Page,
		"version": cat.Version,
		"groups":  cat.Groups(),
	})
}

func (h *Handler) Execute(c echo.Context) error {
	var req PromptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PromptID == "" && req.PromptText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "promptId or promptText is required")
	}

	resp, err := h.dispatcher.Run(c.Request().Context(), session.FromContext(c), req)
	switch {
	case errors.Is(err, ErrExecutionInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownPrompt):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"response": resp})
}

func (h *Handler) GetExecution(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dispatcher.Status(session.FromContext(c)))
}
