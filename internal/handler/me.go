package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/httperr"
	"github.com/iliyamo/user-auth-service/internal/middleware"
)

// Me returns the identity the authorization gate attached to the request.
// The identity is trusted as-is; the token was already verified upstream.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		// Defensive: only reachable if the route was registered without
		// the Authenticate middleware.
		return httperr.Unauthorized("unauthorized")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "this is your profile",
		"user": echo.Map{
			"userId": id.UserID,
			"role":   id.Role,
		},
	})
}
