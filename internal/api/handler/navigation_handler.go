package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/navigation"
	"github.com/lyvo/session-gateway/internal/core/policy"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// NavigationHandler answers routing questions for clients that keep their
// own router and only want the decision.
type NavigationHandler struct {
	sessions ports.SessionReader
	log      zerolog.Logger
}

func NewNavigationHandler(sessions ports.SessionReader, log zerolog.Logger) *NavigationHandler {
	return &NavigationHandler{sessions: sessions, log: log}
}

type decideRequest struct {
	Path    string `json:"path"    validate:"required"`
	Trigger string `json:"trigger" validate:"omitempty,oneof=entry navigation"`
}

type shellResponse struct {
	Path      string `json:"path"`
	ShowShell bool   `json:"show_shell"`
}

// Decide runs the checks a tab would run for path: the entry check on a cold
// landing ("entry"), otherwise the route guard and the navigation watcher.
//
// @Summary      Decide a route
// @Tags         navigation
// @Accept       json
// @Produce      json
// @Param        body  body      decideRequest  true  "Path and trigger"
// @Success      200   {object}  navigation.Decision
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/navigation/decide [post]
func (h *NavigationHandler) Decide(c echo.Context) error {
	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	o := origin(c)
	tab := navigation.NewTab(o.DeviceID, o.TabID, h.sessions, nil, nil, h.log)
	defer tab.Close()

	ctx := c.Request().Context()
	var d navigation.Decision
	if req.Trigger == policy.KindEntry.String() {
		d = tab.Mount(ctx, req.Path)
	} else {
		d = tab.Navigate(ctx, req.Path)
	}
	return c.JSON(http.StatusOK, d)
}

// Shell reports whether the shared navbar, footer and chat show on path.
//
// @Summary      Shared shell visibility
// @Tags         navigation
// @Produce      json
// @Param        path  query     string  true  "SPA path"
// @Success      200   {object}  shellResponse
// @Router       /v1/navigation/shell [get]
func (h *NavigationHandler) Shell(c echo.Context) error {
	p := domain.NormalizePath(c.QueryParam("path"))
	return c.JSON(http.StatusOK, shellResponse{Path: p, ShowShell: policy.ShouldShowSharedShell(p)})
}
