package handler

import (
	"github.com/gofiber/fiber/v2"

	"clubapi/internal/analytics"
	"clubapi/internal/auth"
)

// AnalyticsOverview godoc
// @Summary Club-wide workshop, attendance, refund and stock figures
// @Tags analytics
// @Security BearerAuth
// @Router /api/analytics/overview [get]
func AnalyticsOverview(svc analytics.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Overview(c.UserContext(), auth.ClaimsFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, out)
	}
}

// AnalyticsWorkshop godoc
// @Summary Fill, attendance and interest figures of one workshop
// @Tags analytics
// @Security BearerAuth
// @Router /api/analytics/workshops/{id} [get]
func AnalyticsWorkshop(svc analytics.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		out, err := svc.Workshop(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, out)
	}
}
