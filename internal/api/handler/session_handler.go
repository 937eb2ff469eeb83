package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// SessionHandler exposes the session mutations of the current device.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Login authenticates against the backend and stores the session on the device.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Tab-ID  header    string        false  "Tab id"
// @Param        body      body      loginRequest  true   "Credentials"
// @Success      200       {object}  loginResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.sessions.Login(c.Request().Context(), origin(c), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoginResponse(res))
}

// Register creates an account and logs it in on the device.
//
// @Summary      Sign up
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Tab-ID  header    string           false  "Tab id"
// @Param        body      body      registerRequest  true   "Account details"
// @Success      201       {object}  loginResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.sessions.Register(c.Request().Context(), origin(c), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toLoginResponse(res))
}

// Logout clears the device session. The SPA performs a full reload of
// destination.
//
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Param        X-Tab-ID  header    string  false  "Tab id"
// @Success      200       {object}  logoutResponse
// @Router       /v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	res, err := h.sessions.Logout(c.Request().Context(), origin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logoutResponse{Destination: res.Destination, Reload: res.Reload})
}

// Current returns the device session as every guard sees it.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	rec := h.sessions.Current(c.Request().Context(), origin(c).DeviceID)
	return c.JSON(http.StatusOK, toSessionResponse(rec))
}

// Refresh re-fetches the profile from the backend and rewrites the session.
//
// @Summary      Refresh the cached profile
// @Tags         session
// @Produce      json
// @Param        X-Tab-ID  header    string  false  "Tab id"
// @Success      200       {object}  sessionResponse
// @Failure      401       {object}  errorResponse
// @Router       /v1/session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	rec, err := h.sessions.Refresh(c.Request().Context(), origin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(rec))
}

// CompleteOnboarding marks the Seeker questionnaire as done.
//
// @Summary      Complete Seeker onboarding
// @Tags         session
// @Produce      json
// @Param        X-Tab-ID  header    string  false  "Tab id"
// @Success      200       {object}  sessionResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /v1/session/onboarding/complete [post]
func (h *SessionHandler) CompleteOnboarding(c echo.Context) error {
	rec, err := h.sessions.CompleteOnboarding(c.Request().Context(), origin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(rec))
}

// UpdateProfile saves the Seeker profile fields.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Tab-ID  header    string          false  "Tab id"
// @Param        body      body      profileRequest  true   "Profile fields"
// @Success      200       {object}  sessionResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/session/profile [put]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	rec, err := h.sessions.UpdateProfile(c.Request().Context(), origin(c), req.fields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(rec))
}
