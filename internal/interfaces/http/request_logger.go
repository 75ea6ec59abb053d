package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const localLogger = "logger"

// RequestLogger deja un sublogger con el request id en c.Locals y registra cada petición al terminar.
// Se registra después de requestid.New() para que el header X-Request-ID ya exista.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := log.With().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.Locals(localLogger, reqLog)

		err := c.Next()

		status := c.Response().StatusCode()
		var evt *zerolog.Event
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			evt = reqLog.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			evt = reqLog.Warn()
		default:
			evt = reqLog.Info()
		}
		evt.Int("status", status).Dur("latency", time.Since(start)).Str("user_id", GetUserID(c)).Msg("http")
		return err
	}
}

// loggerFrom logger de la petición; Nop si el middleware no está montado.
func loggerFrom(c *fiber.Ctx) zerolog.Logger {
	if l, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}
