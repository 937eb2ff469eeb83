package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// Auth validates the JWT and injects claims into context:
// "user_id" (string), "email" (string) and "role" (domain.Role).
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// JSON numbers decode as float64.
			rawRole, _ := claims["role"].(float64)
			role := domain.Role(rawRole)
			if !role.Valid() {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no valid role")
			}

			sub, _ := claims["sub"].(string)
			email, _ := claims["email"].(string)
			c.Set("user_id", sub)
			c.Set("email", email)
			c.Set("role", role)

			return next(c)
		}
	}
}
