// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/xeipuuv/gojsonschema"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/common/validation"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/pkg/registry"
)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

type Option func(*Server)

// WithReadinessCheck adds a named dependency to GET /ready.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.checks[name] = check }
}

// WithCatalog swaps the task catalog used for vacancy reports.
func WithCatalog(catalog *vacancy.Catalog) Option {
	return func(s *Server) { s.catalog = catalog }
}

// WithClock fixes "today" for reports that omit it.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is the vacancy HTTP API.
type Server struct {
	app        *fiber.App
	service    *applications.Service
	catalog    *vacancy.Catalog
	submission *gojsonschema.Schema
	validate   *validator.Validate
	checks     map[string]ReadinessCheck
	now        func() time.Time
	log        logger.Logger
}

func New(service *applications.Service, log logger.Logger, opts ...Option) (*Server, error) {
	submission, err := validation.Compile(registry.SubmissionSchema())
	if err != nil {
		return nil, fmt.Errorf("compile submission schema: %w", err)
	}

	s := &Server{
		service:    service,
		catalog:    vacancy.StandardCatalog(),
		submission: submission,
		validate:   validator.New(),
		checks:     make(map[string]ReadinessCheck),
		now:        time.Now,
		log:        logger.Component(log, "api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "vacancy-workers",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s, nil
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", map[string]interface{}{"address": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) routes() {
	s.app.Use(s.recordMetrics)

	s.app.Get("/health", s.health)
	s.app.Get("/ready", s.ready)

	v1 := s.app.Group("/api/v1/vacancy")
	v1.Post("/applications", s.submitApplication)
	v1.Get("/applications", s.listPending)
	v1.Get("/applications/:id", s.getApplication)
	v1.Post("/applications/:id/evaluate", s.evaluateApplication)
	v1.Post("/report", s.buildReport)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	failures := fiber.Map{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"checks": failures,
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// handleError renders errors that escape a handler, including fiber's own
// 404 and 405 responses.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"error":  err.Error(),
		})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
