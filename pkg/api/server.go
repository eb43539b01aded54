// Package api exposes the accept-and-poll HTTP surface: submit a disruption
// prompt, poll for the assessment, read session history.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/services"
)

// Dispatcher starts the background job for an accepted request.
type Dispatcher interface {
	Enqueue(rec *models.RequestRecord)
}

// HealthCheckFunc probes one component. A nil error means healthy.
type HealthCheckFunc func(ctx context.Context) error

// Server is the HTTP front end.
type Server struct {
	requests   *services.RequestService
	sessions   *services.SessionService
	dispatcher Dispatcher
	logger     *slog.Logger

	checks map[string]HealthCheckFunc

	e   *echo.Echo
	srv *http.Server
}

// NewServer wires the routes and middleware.
func NewServer(requests *services.RequestService, sessions *services.SessionService, dispatcher Dispatcher, logger *slog.Logger) *Server {
	s := &Server{
		requests:   requests,
		sessions:   sessions,
		dispatcher: dispatcher,
		logger:     logger.With("component", "api"),
		checks:     make(map[string]HealthCheckFunc),
	}

	e := echo.New()
	e.Use(corsHeaders())
	e.Use(securityHeaders())

	e.POST("/invoke", s.invokeHandler)
	e.GET("/status/:request_id", s.statusHandler)
	e.GET("/sessions/:session_id/history", s.sessionHistoryHandler)
	e.GET("/health", s.healthHandler)

	s.e = e
	return s
}

// AddHealthCheck registers a named component probe for the health endpoint.
func (s *Server) AddHealthCheck(name string, check HealthCheckFunc) {
	s.checks[name] = check
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Shutdown stops the HTTP server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
