package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// AccountHandler serves bearer-token clients that bypass the device session.
type AccountHandler struct {
	auth ports.AuthService
}

func NewAccountHandler(auth ports.AuthService) *AccountHandler {
	return &AccountHandler{auth: auth}
}

type accountResponse struct {
	User *domain.User `json:"user"`
	Home string       `json:"home"`
}

// Me returns the account behind the bearer token.
//
// @Summary      Current account
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/account/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	u, err := h.auth.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{User: u, Home: role.HomePath()})
}

// Onboarding completes the Seeker questionnaire for the bearer's account.
//
// @Summary      Complete onboarding
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/account/onboarding [post]
func (h *AccountHandler) Onboarding(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	u, err := h.auth.CompleteOnboarding(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{User: u, Home: role.HomePath()})
}
