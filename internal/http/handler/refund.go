package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"clubapi/internal/auth"
	"clubapi/internal/model"
	"clubapi/internal/service"
)

type refundRequest struct {
	RegistrationID string `json:"registration_id"`
	Reason         string `json:"reason"`
}

type decisionRequest struct {
	Note string `json:"note"`
}

// RequestRefund godoc
// @Summary Ask for the money of a cancelled paid registration back
// @Tags refunds
// @Security BearerAuth
// @Router /api/refunds [post]
func RequestRefund(svc service.RefundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refundRequest
		if err := decodeBody(c, &req); err != nil {
			return respondError(c, err)
		}
		r, err := svc.Request(c.UserContext(), auth.ClaimsFrom(c), req.RegistrationID, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, r)
	}
}

// ListRefunds godoc
// @Summary List refunds visible to the caller
// @Tags refunds
// @Security BearerAuth
// @Param status query string false "requested, processed, rejected or failed"
// @Router /api/refunds [get]
func ListRefunds(svc service.RefundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refunds, err := svc.List(c.UserContext(), auth.ClaimsFrom(c), c.Query("status"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, refunds)
	}
}

// ApproveRefund godoc
// @Summary Pay a requested refund out
// @Tags refunds
// @Security BearerAuth
// @Router /api/refunds/{id}/approve [post]
func ApproveRefund(svc service.RefundService) fiber.Handler {
	return decideRefund(svc.Approve)
}

// RejectRefund godoc
// @Summary Reject a requested refund
// @Tags refunds
// @Security BearerAuth
// @Router /api/refunds/{id}/reject [post]
func RejectRefund(svc service.RefundService) fiber.Handler {
	return decideRefund(svc.Reject)
}

func decideRefund(decide func(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var req decisionRequest
		if err := decodeBody(c, &req); err != nil {
			return respondError(c, err)
		}
		r, err := decide(c.UserContext(), auth.ClaimsFrom(c), id, req.Note)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, r)
	}
}
