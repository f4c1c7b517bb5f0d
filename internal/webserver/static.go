package webserver

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

// initStaticRoutes wires the companion front end: / serves the login page,
// css/js/img resolve directly, anything else falls through to the page dir.
func (s *WebServer) initStaticRoutes(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return s.servePage(c, "login.html")
	})
	e.GET("/*", s.serveStatic)
}

func (s *WebServer) serveStatic(c echo.Context) error {
	frontDir := s.appCtx.Config().Web.FrontDir
	reqPath := strings.TrimPrefix(c.Request().URL.Path, "/")

	// defend against path traversal
	cleaned := filepath.Clean(reqPath)
	if strings.HasPrefix(cleaned, "..") {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	var target string
	switch {
	case strings.HasPrefix(cleaned, "css/"),
		strings.HasPrefix(cleaned, "js/"),
		strings.HasPrefix(cleaned, "img/"):
		target = filepath.Join(frontDir, cleaned)
	default:
		target = filepath.Join(frontDir, "page", cleaned)
	}

	if _, err := os.Stat(target); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.File(target)
}

func (s *WebServer) servePage(c echo.Context, name string) error {
	target := filepath.Join(s.appCtx.Config().Web.FrontDir, "page", name)
	if _, err := os.Stat(target); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.File(target)
}
