package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/talkincode/toughstore/internal/app"
)

const (
	// ContextAppKey is the echo context key holding the application container
	ContextAppKey = "toughstore_app"
)

var server *WebServer

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
}

type webValidator struct {
	validate *validator.Validate
}

func (v *webValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Init builds the echo instance, middlewares and routes. Must be called
// before any ApiGET/ApiPOST registration.
func Init(appCtx app.AppContext) {
	server = &WebServer{appCtx: appCtx}
	server.init()
}

// Instance returns the singleton web server
func Instance() *WebServer {
	return server
}

func (s *WebServer) init() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &jsoniterSerializer{}
	e.Validator = &webValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(ZapLogger())

	// Inject the application container into every request context
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextAppKey, s.appCtx)
			return next(c)
		}
	})

	e.HTTPErrorHandler = s.errorHandler

	e.GET("/health", s.healthCheck)

	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(s.appCtx.Config().Web.Secret),
		SigningMethod: "HS256",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/auth/login"
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    http.StatusUnauthorized,
				"message": "invalid or missing token",
			})
		},
	}))
	api.GET("", s.apiIndex)
	api.GET("/", s.apiIndex)

	s.initStaticRoutes(e)

	s.root = e
	s.api = api
}

// errorHandler keeps API errors inside the JSON envelope; anything else
// surfaces as a 500 with the message text, matching the page server.
func (s *WebServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}
	if strings.HasPrefix(c.Path(), "/api") {
		_ = c.JSON(code, map[string]interface{}{"code": code, "message": message})
		return
	}
	_ = c.String(code, message)
}

func (s *WebServer) apiIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "API service running",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"auth":      "/auth",
			"products":  "/products",
			"members":   "/members",
			"orders":    "/orders",
			"inventory": "/inventory",
			"stats":     "/stats",
		},
	})
}

func (s *WebServer) healthCheck(c echo.Context) error {
	dbStatus := "connected"
	if sqlDB, err := s.appCtx.DB().DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"database": dbStatus,
	})
}

// Start listens on the configured host:port until the context is canceled
func Start(ctx context.Context) error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("starting web server", zap.String("addr", addr))

	errchan := make(chan error, 1)
	go func() {
		errchan <- server.root.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.root.Shutdown(shutdownCtx)
	case err := <-errchan:
		return err
	}
}

// ZapLogger logs each request through the global zap logger
func ZapLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			res := c.Response()
			fields := []zap.Field{
				zap.Int("status", res.Status),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("ip", c.RealIP()),
				zap.Duration("latency", time.Since(start)),
			}
			switch {
			case res.Status >= 500:
				zap.L().Error("request", fields...)
			case res.Status >= 400:
				zap.L().Warn("request", fields...)
			default:
				zap.L().Debug("request", fields...)
			}
			return nil
		}
	}
}

// ApiGET registers a GET handler under the /api group
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers a POST handler under the /api group
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers a PUT handler under the /api group
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers a DELETE handler under the /api group
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// Echo exposes the underlying echo instance (used by tests)
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}
