package opportunities

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

// MetricsReader returns the normalized metrics payload for a filter set.
type MetricsReader interface {
	Metrics(ctx context.Context, f metrics.Filters) (metrics.DashboardMetrics, error)
}

type Handler struct {
	metrics MetricsReader
	prompts echo.HandlerFunc
}

// NewHandler serves the opportunities page. prompts answers the page's
// catalog request.
func NewHandler(m MetricsReader, prompts echo.HandlerFunc) *Handler {
	return &Handler{metrics: m, prompts: prompts}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/opportunities/pipeline", h.GetPipeline)
	if h.prompts != nil {
		g.GET("/opportunities/prompts", h.prompts)
	}
}

// Pipeline is the opportunities page model.
type Pipeline struct {
	Filters         metrics.Filters      `json:"filters"`
	Status          dashboard.ViewStatus `json:"status"`
	Funnel          dashboard.Funnel     `json:"funnel"`
	AffectedMembers *float64             `json:"affectedMembers,omitempty"`
}

// BuildPipeline derives the pipeline from a payload. A nil payload yields
// an empty pipeline of zero stages.
func BuildPipeline(f metrics.Filters, m *metrics.DashboardMetrics) Pipeline {
	status := dashboard.ViewReady
	if m == nil {
		status = dashboard.ViewEmpty
	}
	n := metrics.Normalize(m)
	return Pipeline{
		Filters:         f,
		Status:          status,
		Funnel:          dashboard.BuildFunnel(*n.Opportunity),
		AffectedMembers: n.Opportunity.AffectedMembers,
	}
}

func (h *Handler) GetPipeline(c echo.Context) error {
	f := metrics.FiltersFromQuery(c.QueryParams())
	m, err := h.metrics.Metrics(c.Request().Context(), f)
	if errors.Is(err, metrics.ErrNoData) {
		return c.JSON(http.StatusOK, BuildPipeline(f, nil))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load opportunity metrics")
	}
	return c.JSON(http.StatusOK, BuildPipeline(f, &m))
}
