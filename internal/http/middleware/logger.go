package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"csvexport/internal/logging"
)

// LoggerWithWriter logs each request as one JSON line on w, with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return LoggerWithLogger(logging.New(w, loc))
}

// LoggerWithLogger logs each request through logger. A line carries request_id
// (from RequestID), method, path, status and latency in milliseconds.
func LoggerWithLogger(logger *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Collect fields after handler executed to capture final status
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if err != nil {
			// The global error handler has not run yet
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		logger.Log(map[string]any{
			"request_id": rid,
			"method":     c.Method(),
			// Use only the path segment (no query string) to match requirement naming
			"path":    c.Path(),
			"status":  status,
			"latency": float64(time.Since(start).Microseconds()) / 1000,
		})

		return err
	}
}
