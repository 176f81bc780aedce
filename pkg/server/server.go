// Package server builds the console's echo server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/middleware"
)

// Config holds the HTTP server settings
type Config struct {
	AppName           string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	AllowOrigins      []string
	AllowMethods      []string
}

// Router registers routes on the API group
type Router interface {
	RegisterRoutes(g *echo.Group)
}

// Server is the console's HTTP API
type Server struct {
	echo   *echo.Echo
	http   *http.Server
	logger ectologger.Logger
}

// New builds the echo instance with the console's middleware chain
func New(cfg Config, logger ectologger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			echo.HeaderAcceptEncoding,
			echo.HeaderXRequestID,
			"Accept-Language",
			middleware.HeaderOperatorID,
		},
	}))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())

	return &Server{
		echo: e,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           e,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
		logger: logger,
	}
}

// Echo exposes the echo instance for routes registered outside the API group
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Mount registers routers under /api/v1
func (s *Server) Mount(routers ...Router) {
	api := s.echo.Group("/api/v1")
	for _, r := range routers {
		r.RegisterRoutes(api)
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves in the background. Errors other than a normal shutdown are sent on the returned channel.
func (s *Server) Start(ctx context.Context) <-chan error {
	errs := make(chan error, 1)
	go func() {
		s.logger.WithContext(ctx).Infof("HTTP server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	return errs
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
