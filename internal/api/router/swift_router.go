package router

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handler "github.com/zdziszkee/swiftcodes-api/internal/api/handlers"
	"github.com/zdziszkee/swiftcodes-api/internal/api/middleware"
	"github.com/zdziszkee/swiftcodes-api/internal/logging"
)

// Config carries the server level settings the router needs.
type Config struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Health is mounted at /healthz when set.
	Health *handler.HealthHandler

	// Gatherer is exposed at MetricsPath when both are set.
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

// SetupRoutes configures all API routes
func SetupRoutes(cfg Config, swiftHandler *handler.SwiftHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       cfg.AppName,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		CaseSensitive: true,
		UnescapePath:  true,
		ErrorHandler:  errorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.AccessLog())
	app.Use(recover.New())

	if cfg.Health != nil {
		app.Get("/healthz", cfg.Health.Check)
	}
	if cfg.Gatherer != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	// API versioning
	v1 := app.Group("/v1")

	codes := v1.Group("/swift-codes")
	codes.Get("/country/:countryISO2code", swiftHandler.GetByCountry)
	codes.Get("/:swiftCode", swiftHandler.GetByCode)
	codes.Post("", swiftHandler.Create)
	codes.Delete("/:swiftCode", swiftHandler.Delete)

	return app
}

// errorHandler renders errors that escaped the handlers, including recovered
// panics, as the JSON message body every endpoint uses.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := handler.MsgInternalError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		logging.FromContext(c.Context()).Error("unhandled error", "path", c.Path(), "error", err)
		message = handler.MsgInternalError
	}

	return c.Status(code).JSON(handler.MessageResponse{Message: message})
}
