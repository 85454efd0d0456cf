package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewRequestLogger logs one line per request, at warn level for client
// errors and error level for server errors
func NewRequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		err := c.Next()

		msg := "HTTP Request"
		if err != nil {
			msg = err.Error()
			// Let the error handler pick the status before it is logged
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				c.Status(fiber.StatusInternalServerError)
			}
		}

		code := c.Response().StatusCode()

		ipAddress := c.IP()
		if forwardedIP := c.Get(fiber.HeaderXForwardedFor); forwardedIP != "" {
			ipAddress = forwardedIP
		}

		level := zerolog.InfoLevel
		switch {
		case code >= fiber.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case code >= fiber.StatusBadRequest:
			level = zerolog.WarnLevel
		}

		log.WithLevel(level).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("query", string(c.Request().URI().QueryString())).
			Str("ip", ipAddress).
			Str("latency", time.Since(startTime).String()).
			Int("bytes", len(c.Response().Body())).
			Msg(msg)

		return nil
	}
}
