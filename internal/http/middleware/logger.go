package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Logger emits one line per request with request_id, method, path, status and
// latency in milliseconds. It also attaches a request scoped logger to the user
// context so services can log through zerolog.Ctx.
func Logger(base zerolog.Logger) fiber.Handler {
	return requestLogger(base, nil)
}

// LoggerWithWriter is Logger writing JSON to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return requestLogger(zerolog.New(w), loc)
}

func requestLogger(base zerolog.Logger, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		log := base.With().Str("request_id", rid).Logger()
		c.SetUserContext(log.WithContext(c.UserContext()))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		var evt *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			evt = log.Error()
		case status >= fiber.StatusBadRequest:
			evt = log.Warn()
		default:
			evt = log.Info()
		}
		if loc != nil {
			evt = evt.Str("ts", time.Now().In(loc).Format(time.RFC3339Nano))
		}
		evt.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("request")

		return nil
	}
}
