// Package session resolves the key under which per-caller state (dashboard
// view, chat transcript, prompt status) is stored.
package session

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/auth"
)

// Header carries an explicit session id, e.g. one per browser tab.
const Header = "X-Session-ID"

// Anonymous owns every session of a caller without an authenticated user.
const Anonymous = "anonymous"

// FromContext returns the state key of the request. The X-Session-ID header
// only selects a session among those owned by the authenticated user, so one
// user can never name another user's state.
func FromContext(c echo.Context) string {
	owner := auth.UserIDFromContext(c.Request().Context())
	if owner == "" {
		owner = Anonymous
	}
	return Key(owner, strings.TrimSpace(c.Request().Header.Get(Header)))
}

// Key builds the state key of session id under owner. The owner is length
// prefixed so no pair of (owner, id) values maps to the same key.
func Key(owner, id string) string {
	k := strconv.Itoa(len(owner)) + ":" + owner
	if id == "" {
		return k
	}
	return k + "/" + id
}
