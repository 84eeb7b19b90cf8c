package handler

import (
	"github.com/gofiber/fiber/v2"

	"clubapi/internal/auth"
	"clubapi/internal/service"
)

type acceptRequest struct {
	Token string `json:"token"`
}

// Me godoc
// @Summary Show the caller's membership
// @Tags members
// @Security BearerAuth
// @Router /api/me [get]
func Me(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.Me(c.UserContext(), auth.ClaimsFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, m)
	}
}

// Navigation godoc
// @Summary List the menu entries the caller's role may see
// @Tags members
// @Security BearerAuth
// @Router /api/navigation [get]
func Navigation(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusOK, svc.Navigation(auth.ClaimsFrom(c)))
	}
}

// ListMembers godoc
// @Summary List club members
// @Tags members
// @Security BearerAuth
// @Router /api/members [get]
func ListMembers(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.List(c.UserContext(), auth.ClaimsFrom(c), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, res)
	}
}

// ChangeMemberRole godoc
// @Summary Change the club role of another member
// @Tags members
// @Security BearerAuth
// @Router /api/members/{userId}/role [put]
func ChangeMemberRole(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ChangeRoleInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		m, err := svc.ChangeRole(c.UserContext(), auth.ClaimsFrom(c), c.Params("userId"), in.Role)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, m)
	}
}

// CreateInvitation godoc
// @Summary Invite someone by email
// @Tags invitations
// @Security BearerAuth
// @Router /api/invitations [post]
func CreateInvitation(svc service.InvitationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.InviteInput
		if err := decodeBody(c, &in); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Invite(c.UserContext(), auth.ClaimsFrom(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusCreated, res)
	}
}

// ListInvitations godoc
// @Summary List invitations
// @Tags invitations
// @Security BearerAuth
// @Param status query string false "pending, accepted, revoked or expired"
// @Router /api/invitations [get]
func ListInvitations(svc service.InvitationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		invs, err := svc.List(c.UserContext(), auth.ClaimsFrom(c), c.Query("status"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, invs)
	}
}

// RevokeInvitation godoc
// @Summary Revoke a pending invitation
// @Tags invitations
// @Security BearerAuth
// @Router /api/invitations/{id}/revoke [post]
func RevokeInvitation(svc service.InvitationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		inv, err := svc.Revoke(c.UserContext(), auth.ClaimsFrom(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, inv)
	}
}

// AcceptInvitation godoc
// @Summary Accept an invitation sent to the caller's email
// @Tags invitations
// @Security BearerAuth
// @Router /api/invitations/accept [post]
func AcceptInvitation(svc service.InvitationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req acceptRequest
		if err := decodeBody(c, &req); err != nil {
			return respondError(c, err)
		}
		m, err := svc.Accept(c.UserContext(), auth.ClaimsFrom(c), req.Token)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, fiber.StatusOK, m)
	}
}
