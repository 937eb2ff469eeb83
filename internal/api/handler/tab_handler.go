package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/navigation"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

const (
	defaultHeartbeat = 15 * time.Second
	streamBuffer     = 16
)

// TabRegistry is the part of navigation.Registry the stream needs.
type TabRegistry interface {
	Open(deviceID, tabID string, nav ports.Navigator) *navigation.Tab
	Get(deviceID, tabID string) (*navigation.Tab, error)
	Release(t *navigation.Tab)
}

// TabHandler keeps a live SPA tab in sync over Server-Sent Events.
type TabHandler struct {
	tabs      TabRegistry
	log       zerolog.Logger
	heartbeat time.Duration
}

func NewTabHandler(tabs TabRegistry, log zerolog.Logger) *TabHandler {
	return &TabHandler{tabs: tabs, log: log, heartbeat: defaultHeartbeat}
}

type navigateEvent struct {
	Target string `json:"target"`
	Mode   string `json:"mode"`
}

type sessionEvent struct {
	Kind     domain.SessionEventKind `json:"kind"`
	Key      string                  `json:"key,omitempty"`
	Decision navigation.Decision     `json:"decision"`
}

type pathRequest struct {
	Path string `json:"path" validate:"required"`
}

// sseNavigator hands navigation requests to the stream loop.
type sseNavigator struct {
	ch  chan navigateEvent
	log zerolog.Logger
}

func (n *sseNavigator) Navigate(_ context.Context, target string, mode ports.NavigationMode) error {
	select {
	case n.ch <- navigateEvent{Target: target, Mode: mode.String()}:
	default:
		n.log.Warn().Str("target", target).Msg("navigate dropped, stream is not draining")
	}
	return nil
}

// Stream mounts the tab on path and streams "decision", "navigate" and
// "session" events until the client disconnects.
//
// @Summary      Tab event stream
// @Tags         tabs
// @Produce      text/event-stream
// @Param        path    query  string  false  "Path the tab is mounted on"
// @Param        tab_id  query  string  false  "Tab id"
// @Success      200
// @Router       /v1/tabs/stream [get]
func (h *TabHandler) Stream(c echo.Context) error {
	o := origin(c)
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	log := h.log.With().Str("device_id", o.DeviceID).Str("tab_id", o.TabID).Logger()
	nav := &sseNavigator{ch: make(chan navigateEvent, streamBuffer), log: log}
	tab := h.tabs.Open(o.DeviceID, o.TabID, nav)
	defer h.tabs.Release(tab)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	path := c.QueryParam("path")
	if path == "" {
		path = domain.PathRoot
	}
	if err := writeEvent(w, "decision", tab.Mount(ctx, path)); err != nil {
		return nil
	}

	observed := make(chan sessionEvent, streamBuffer)
	go func() {
		err := tab.Run(ctx, func(ev domain.SessionEvent, d navigation.Decision) {
			select {
			case observed <- sessionEvent{Kind: ev.Kind, Key: ev.Key, Decision: d}:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("tab stopped")
		}
		cancel()
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	log.Debug().Str("path", path).Msg("tab stream opened")
	for {
		var err error
		select {
		case <-ctx.Done():
			log.Debug().Msg("tab stream closed")
			return nil
		case <-tab.Done():
			log.Debug().Msg("tab replaced, stream closed")
			return nil
		case ev := <-nav.ch:
			err = writeEvent(w, "navigate", ev)
		case ev := <-observed:
			err = writeEvent(w, "session", ev)
		case <-ticker.C:
			_, err = fmt.Fprint(w, ": ping\n\n")
			w.Flush()
		}
		if err != nil {
			log.Debug().Err(err).Msg("tab stream write failed")
			return nil
		}
	}
}

// Path reports an in-app navigation of an open tab. Any redirect is also
// pushed on the tab's stream.
//
// @Summary      Report a path change
// @Tags         tabs
// @Accept       json
// @Produce      json
// @Param        tab_id  path      string       true  "Tab id"
// @Param        body    body      pathRequest  true  "New path"
// @Success      200     {object}  navigation.Decision
// @Failure      404     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/tabs/{tab_id}/path [post]
func (h *TabHandler) Path(c echo.Context) error {
	var req pathRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	tab, err := h.tabs.Get(origin(c).DeviceID, c.Param("tab_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tab.Navigate(c.Request().Context(), req.Path))
}

func writeEvent(w *echo.Response, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
