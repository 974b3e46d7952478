package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/zdziszkee/swiftcodes-api/internal/logging"
)

// AccessLog logs one structured entry per request. Errors returned by the
// chain are handed to the app's error handler first so the logged status is
// the one the client receives.
func AccessLog() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}

		logging.FromContext(c.Context()).Log(c.Context(), level, "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP(),
		)
		return nil
	}
}
