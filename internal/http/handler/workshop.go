package handler

import (
	"github.com/gofiber/fiber/v2"

	"clubapi/internal/auth"
	"clubapi/internal/model"
	"clubapi/internal/service"
)

type cancelRequest struct {
	Reason string `json:"reason"`
}

// ListWorkshops godoc
// @Summary List workshops visible to the caller
// @Tags workshops
// @Security BearerAuth
// @Param status query string false "planned, published, finished or cancelled"
// @Param limit query int false "page size (max 100)"
// @Param offset query int false "page offset"
// @Router /api/workshops [get]
func ListWorkshops(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.List(c.UserContext(), auth.ClaimsFrom(c), c.Query("status"), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, res)
	}
}

// GetWorkshop godoc
// @Summary Get a workshop
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id} [get]
func GetWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		w, err := svc.Get(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, w)
	}
}

// CreateWorkshop godoc
// @Summary Create a planned workshop
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops [post]
func CreateWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateWorkshopInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		w, err := svc.Create(c.UserContext(), auth.ClaimsFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, w)
	}
}

// UpdateWorkshop godoc
// @Summary Update a planned or published workshop
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id} [patch]
func UpdateWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var patch model.WorkshopPatch
		if err := decodeBody(c, &patch); err != nil {
			return respondError(c, err)
		}
		w, err := svc.Update(c.UserContext(), auth.ClaimsFrom(c), id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, w)
	}
}

// DeleteWorkshop godoc
// @Summary Delete a workshop that was never published
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id} [delete]
func DeleteWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.Delete(c.UserContext(), auth.ClaimsFrom(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PublishWorkshop godoc
// @Summary Publish a planned workshop
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id}/publish [post]
func PublishWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		w, err := svc.Publish(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, w)
	}
}

// CancelWorkshop godoc
// @Summary Cancel a workshop and its registrations
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id}/cancel [patch]
func CancelWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var req cancelRequest
		if err := decodeBody(c, &req); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Cancel(c.UserContext(), auth.ClaimsFrom(c), id, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, res)
	}
}

// FinishWorkshop godoc
// @Summary Finish a started workshop
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id}/finish [post]
func FinishWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.Finish(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, res)
	}
}

// WorkshopInterest godoc
// @Summary Show, register or withdraw interest in a workshop
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/{id}/interest [get]
// @Router /api/workshops/{id}/interest [post]
// @Router /api/workshops/{id}/interest [delete]
func WorkshopInterest(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		ctx, claims := c.UserContext(), auth.ClaimsFrom(c)

		var sum *model.InterestSummary
		switch c.Method() {
		case fiber.MethodPost:
			sum, err = svc.AddInterest(ctx, claims, id)
		case fiber.MethodDelete:
			sum, err = svc.RemoveInterest(ctx, claims, id)
		default:
			sum, err = svc.Interest(ctx, claims, id)
		}
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, sum)
	}
}

// GenerateWorkshop godoc
// @Summary Draft a workshop title and description
// @Tags workshops
// @Security BearerAuth
// @Router /api/workshops/generate [post]
func GenerateWorkshop(svc service.WorkshopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.GenerateWorkshopInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		draft, err := svc.Generate(c.UserContext(), auth.ClaimsFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, draft)
	}
}
