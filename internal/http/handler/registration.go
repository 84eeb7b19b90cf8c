package handler

import (
	"github.com/gofiber/fiber/v2"

	"clubapi/internal/auth"
	"clubapi/internal/service"
)

const stripeSignatureHeader = "Stripe-Signature"

type attendanceRequest struct {
	Attendance string `json:"attendance"`
}

type checkInRequest struct {
	Token string `json:"token"`
}

// RegisterForWorkshop godoc
// @Summary Take a seat in a published workshop
// @Tags registrations
// @Security BearerAuth
// @Router /api/workshops/{id}/registrations [post]
func RegisterForWorkshop(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.Register(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, res)
	}
}

// CancelOwnRegistration godoc
// @Summary Give the caller's seat back
// @Tags registrations
// @Security BearerAuth
// @Router /api/workshops/{id}/registrations/me [delete]
func CancelOwnRegistration(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.CancelOwn(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, res)
	}
}

// ListWorkshopRegistrations godoc
// @Summary List the registrations of a workshop
// @Tags registrations
// @Security BearerAuth
// @Router /api/workshops/{id}/registrations [get]
func ListWorkshopRegistrations(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		regs, err := svc.ListForWorkshop(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, regs)
	}
}

// ListMyRegistrations godoc
// @Summary List the caller's registrations
// @Tags registrations
// @Security BearerAuth
// @Router /api/me/registrations [get]
func ListMyRegistrations(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		regs, err := svc.ListMine(c.UserContext(), auth.ClaimsFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, regs)
	}
}

// MarkAttendance godoc
// @Summary Record attended or no_show for a confirmed registration
// @Tags registrations
// @Security BearerAuth
// @Router /api/workshops/{id}/registrations/{registrationId}/attendance [patch]
func MarkAttendance(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workshopID, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		registrationID, err := pathID(c, "registrationId")
		if err != nil {
			return respondError(c, err)
		}
		var req attendanceRequest
		if err := decodeBody(c, &req); err != nil {
			return respondError(c, err)
		}
		reg, err := svc.MarkAttendance(c.UserContext(), auth.ClaimsFrom(c), workshopID, registrationID, req.Attendance)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, reg)
	}
}

// CheckInCode godoc
// @Summary Render the check-in QR code of a confirmed registration
// @Tags registrations
// @Security BearerAuth
// @Produce png
// @Router /api/registrations/{id}/checkin-code [get]
func CheckInCode(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		png, err := svc.CheckInCode(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Type("png")
		return c.Status(fiber.StatusOK).Send(png)
	}
}

// CheckIn godoc
// @Summary Check a ticket holder in
// @Tags registrations
// @Security BearerAuth
// @Router /api/workshops/{id}/checkin [post]
func CheckIn(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var req checkInRequest
		if err := decodeBody(c, &req); err != nil {
			return respondError(c, err)
		}
		reg, err := svc.CheckIn(c.UserContext(), auth.ClaimsFrom(c), id, req.Token)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, reg)
	}
}

// StripeWebhook godoc
// @Summary Receive signed payment events
// @Tags webhooks
// @Router /api/webhooks/stripe [post]
func StripeWebhook(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// fasthttp reuses the body buffer after the handler returns.
		payload := append([]byte(nil), c.Body()...)
		if err := svc.HandlePaymentWebhook(c.UserContext(), payload, c.Get(stripeSignatureHeader)); err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, fiber.Map{"received": true})
	}
}
