package segments

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

type MetricsReader interface {
	Metrics(ctx context.Context, f metrics.Filters) (metrics.DashboardMetrics, error)
}

type Handler struct {
	metrics MetricsReader
	prompts echo.HandlerFunc
}

func NewHandler(m MetricsReader, prompts echo.HandlerFunc) *Handler {
	return &Handler{metrics: m, prompts: prompts}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/segments/population", h.GetPopulation)
	if h.prompts != nil {
		g.GET("/segments/prompts", h.prompts)
	}
}

// Population is the segmentation page model: utilization tiles, the cost
// distribution with computed shares and high-cost member concentration.
type Population struct {
	Filters               metrics.Filters                `json:"filters"`
	Status                dashboard.ViewStatus           `json:"status"`
	TotalMembers          float64                        `json:"totalMembers"`
	Utilization           []dashboard.UtilizationCard    `json:"utilization"`
	CostDistribution      []dashboard.CostShare          `json:"costDistribution"`
	HighCostConcentration *metrics.HighCostConcentration `json:"highCostConcentration,omitempty"`
}

func BuildPopulation(f metrics.Filters, m *metrics.DashboardMetrics) Population {
	status := dashboard.ViewReady
	if m == nil {
		status = dashboard.ViewEmpty
	}
	n := metrics.Normalize(m)
	return Population{
		Filters:               f,
		Status:                status,
		TotalMembers:          n.Organizational.TotalMembers,
		Utilization:           dashboard.BuildUtilization(*n.CostUtilization),
		CostDistribution:      dashboard.BuildCostShares(n.CostDistribution),
		HighCostConcentration: n.Organizational.HighCostConcentration,
	}
}

func (h *Handler) GetPopulation(c echo.Context) error {
	f := metrics.FiltersFromQuery(c.QueryParams())
	m, err := h.metrics.Metrics(c.Request().Context(), f)
	if errors.Is(err, metrics.ErrNoData) {
		return c.JSON(http.StatusOK, BuildPopulation(f, nil))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load population metrics")
	}
	return c.JSON(http.StatusOK, BuildPopulation(f, &m))
}
