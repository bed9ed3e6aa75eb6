package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	issuer *TokenIssuer
}

// NewHandler serves the identity endpoints. A nil issuer leaves the token
// endpoint unregistered.
func NewHandler(issuer *TokenIssuer) *Handler {
	return &Handler{issuer: issuer}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/auth/me", h.Me)
	if h.issuer != nil {
		g.POST("/auth/token", h.IssueToken)
	}
}

type identityResponse struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	uid := UserIDFromContext(ctx)
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	roles := RolesFromContext(ctx)
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(http.StatusOK, identityResponse{UserID: uid, Roles: roles})
}

type tokenRequest struct {
	UserID string   `json:"userId"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) IssueToken(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	if len(req.Roles) == 0 {
		req.Roles = []string{"analyst"}
	}

	token, expires, err := h.issuer.Issue(req.UserID, req.Name, req.Roles)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expires})
}
