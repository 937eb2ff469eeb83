package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyvo/session-gateway/internal/api/middleware"
	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// fails fast when they are missing or unusable.
func ctxClaims(c echo.Context) (userID string, role domain.Role, err error) {
	role, _ = c.Get("role").(domain.Role)
	if !role.Valid() {
		return "", 0, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", 0, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return userID, role, nil
}

// origin returns the device and tab the Device middleware resolved.
func origin(c echo.Context) ports.Origin {
	return ports.Origin{DeviceID: middleware.DeviceID(c), TabID: middleware.TabID(c)}
}
