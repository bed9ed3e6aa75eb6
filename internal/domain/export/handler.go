package export

import (
	"bytes"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
)

// ViewBuilder builds a dashboard view for a filter set.
type ViewBuilder interface {
	Build(ctx context.Context, f metrics.Filters) (dashboard.View, error)
}

type Handler struct {
	views  ViewBuilder
	logger zerolog.Logger
}

func NewHandler(views ViewBuilder, logger zerolog.Logger) *Handler {
	return &Handler{views: views, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/export/dashboard", h.ExportDashboard)
}

// ExportDashboard serves GET /api/export/dashboard?format=csv|ndjson|html&chart=trend|distribution
// plus the usual metrics filters.
func (h *Handler) ExportDashboard(c echo.Context) error {
	format, err := ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	chart, err := ParseChart(c.QueryParam("chart"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	f := metrics.FiltersFromQuery(c.QueryParams())
	view, err := h.views.Build(c.Request().Context(), f)
	if err != nil {
		h.logger.Warn().Err(err).Str("filters", f.Key()).Msg("export: build view")
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load dashboard metrics")
	}

	var buf bytes.Buffer
	switch format {
	case FormatHTML:
		err = RenderHTML(&buf, view, chart)
	case FormatNDJSON:
		err = WriteNDJSON(&buf, view)
	default:
		err = WriteCSV(&buf, view)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("format", string(format)).Msg("export: render")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render export")
	}

	resp := c.Response().Header()
	if format == FormatHTML {
		resp.Set("Content-Security-Policy", ChartContentSecurityPolicy)
	} else {
		resp.Set(echo.HeaderContentDisposition, `attachment; filename="dashboard.`+string(format)+`"`)
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
