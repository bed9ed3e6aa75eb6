package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/auth"
	"github.com/ARUNMOHANRAJ471/opp-miner/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin))
	read.GET("/audit", h.List)
}

// List serves GET /api/audit?limit=&offset=&userId=&resource=.
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{UserID: c.QueryParam("userId"), Resource: c.QueryParam("resource")}

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		h.svc.logger.Error().Err(err).Msg("list audit records")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit records")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg).WithLinks(c.Request().URL.Path))
}
