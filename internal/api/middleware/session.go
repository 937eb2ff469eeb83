package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// RequireSession rejects requests whose device has no authenticated session.
// It must run after Device.
func RequireSession(sessions ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rec := sessions.Read(c.Request().Context(), DeviceID(c))
			if !rec.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			}
			return next(c)
		}
	}
}
