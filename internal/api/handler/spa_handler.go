package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// SPAHandler serves the built SPA: real files as-is, every other path as
// index.html so the client router can take over.
type SPAHandler struct {
	dir string
}

func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{dir: dir}
}

func (h *SPAHandler) Serve(c echo.Context) error {
	rel := path.Clean("/" + c.Request().URL.Path)
	if strings.HasPrefix(rel, "/v1/") {
		return echo.ErrNotFound
	}
	if rel != "/" {
		name := filepath.Join(h.dir, filepath.FromSlash(rel))
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			return c.File(name)
		}
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "spa not built")
	}
	return c.File(index)
}
