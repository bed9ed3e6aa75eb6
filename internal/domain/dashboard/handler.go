package dashboard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/session"
)

// StaleHeader is set on responses whose view was superseded by a newer load.
const StaleHeader = "X-View-Stale"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the metrics endpoints on the /api/metrics group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetMetrics)
	g.GET("/dashboard", h.GetDashboard)
	g.GET("/view", h.GetView)
}

func (h *Handler) GetMetrics(c echo.Context) error {
	f := metrics.FiltersFromQuery(c.QueryParams())
	m, err := h.svc.Metrics(c.Request().Context(), f)
	if errors.Is(err, metrics.ErrNoData) {
		return echo.NewHTTPError(http.StatusNotFound, "no metrics for the selected filters")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load metrics")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetDashboard(c echo.Context) error {
	f := metrics.FiltersFromQuery(c.QueryParams())
	res, err := h.svc.Load(c.Request().Context(), session.FromContext(c), f)
	if res.Stale {
		c.Response().Header().Set(StaleHeader, "true")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load dashboard metrics")
	}
	return c.JSON(http.StatusOK, res.View)
}

func (h *Handler) GetView(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Current(session.FromContext(c)))
}
