package middleware

import (
	"context"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/navigation"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// httpNavigator answers a cold page load. It remembers the first redirect so
// the middleware can turn it into a 302.
type httpNavigator struct {
	target string
}

func (n *httpNavigator) Navigate(_ context.Context, target string, _ ports.NavigationMode) error {
	if n.target == "" {
		n.target = target
	}
	return nil
}

// EntryRedirect mounts a throwaway tab for every full page load of an SPA
// route: the entry check, the route guard and the watcher run once, and the
// first redirect becomes a 302. Requests that may stay pass through, and so
// do asset requests (any path with a file extension). It must run after Device.
func EntryRedirect(sessions ports.SessionReader, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if (req.Method != http.MethodGet && req.Method != http.MethodHead) || path.Ext(req.URL.Path) != "" {
				return next(c)
			}

			nav := &httpNavigator{}
			tab := navigation.NewTab(DeviceID(c), TabID(c), sessions, nav, nil, log)
			tab.Mount(req.Context(), req.URL.Path)
			tab.Close()

			if nav.target != "" {
				return c.Redirect(http.StatusFound, nav.target)
			}
			return next(c)
		}
	}
}
