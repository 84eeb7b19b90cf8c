package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"clubapi/internal/http/middleware"
	"clubapi/internal/service"
	"clubapi/internal/validator"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool          `json:"success"`
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; more specific sentinels come first.
var errorMappings = []errorMapping{
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{service.ErrUnauthenticated, fiber.StatusUnauthorized, "UNAUTHENTICATED"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrWorkshopFull, fiber.StatusConflict, "WORKSHOP_FULL"},
	{service.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{service.ErrPaymentProvider, fiber.StatusBadGateway, "PAYMENT_PROVIDER_ERROR"},
	{service.ErrUnavailable, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{context.DeadlineExceeded, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// respondError maps a service error onto the error envelope. Client errors carry
// the service message; server errors are logged and answered with a generic one.
func respondError(c *fiber.Ctx, err error) error {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return writeError(c, fiber.StatusBadRequest, rerr.code, rerr.message)
	}
	var verr *validator.Error
	if errors.As(err, &verr) {
		return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", verr.Fields)
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status < fiber.StatusInternalServerError {
			return writeError(c, m.status, m.code, err.Error())
		}
		recordServerError(c, m.status, err)
		return writeError(c, m.status, m.code, upstreamMessage(m.status))
	}

	recordServerError(c, fiber.StatusInternalServerError, err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func upstreamMessage(status int) string {
	if status == fiber.StatusBadGateway {
		return "payment provider error"
	}
	return "dependency unavailable"
}

// recordServerError logs err and attaches it to the active span.
func recordServerError(c *fiber.Ctx, status int, err error) {
	ctx := c.UserContext()
	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("request_id", requestIDFromCtx(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Msg("request failed")

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return respondError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, fe.Code, "UNAUTHENTICATED", fe.Message)
		case fiber.StatusForbidden:
			return writeError(c, fe.Code, "FORBIDDEN", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusServiceUnavailable:
			return writeError(c, fe.Code, "SERVICE_UNAVAILABLE", "dependency unavailable")
		default:
			recordServerError(c, fe.Code, err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
