package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"clubapi/internal/analytics"
	"clubapi/internal/auth"
	"clubapi/internal/model"
	"clubapi/internal/service"
)

// Services bundles the use cases served over HTTP.
type Services struct {
	Workshops     service.WorkshopService
	Registrations service.RegistrationService
	Refunds       service.RefundService
	Inventory     service.InventoryService
	Invitations   service.InvitationService
	Members       service.MemberService
	Analytics     analytics.Service
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// authn verifies the bearer token and stores the caller's claims for every /api route
// except the payment webhook, which is authenticated by its signature.
func RegisterRoutes(app *fiber.App, db *sql.DB, authn fiber.Handler, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/api/webhooks/stripe", StripeWebhook(svc.Registrations))

	staff := auth.RequireRole(model.RoleStaff)
	admin := auth.RequireRole(model.RoleAdmin)

	api := app.Group("/api", authn)

	api.Get("/me", Me(svc.Members))
	api.Get("/me/registrations", ListMyRegistrations(svc.Registrations))
	api.Get("/navigation", Navigation(svc.Members))

	ws := api.Group("/workshops")
	ws.Get("/", ListWorkshops(svc.Workshops))
	ws.Post("/", staff, CreateWorkshop(svc.Workshops))
	ws.Post("/generate", staff, GenerateWorkshop(svc.Workshops))
	ws.Get("/:id", GetWorkshop(svc.Workshops))
	ws.Patch("/:id", staff, UpdateWorkshop(svc.Workshops))
	ws.Delete("/:id", staff, DeleteWorkshop(svc.Workshops))
	ws.Post("/:id/publish", staff, PublishWorkshop(svc.Workshops))
	ws.Patch("/:id/cancel", staff, CancelWorkshop(svc.Workshops))
	ws.Post("/:id/finish", staff, FinishWorkshop(svc.Workshops))
	ws.Get("/:id/interest", WorkshopInterest(svc.Workshops))
	ws.Post("/:id/interest", WorkshopInterest(svc.Workshops))
	ws.Delete("/:id/interest", WorkshopInterest(svc.Workshops))
	ws.Post("/:id/registrations", RegisterForWorkshop(svc.Registrations))
	ws.Get("/:id/registrations", staff, ListWorkshopRegistrations(svc.Registrations))
	ws.Delete("/:id/registrations/me", CancelOwnRegistration(svc.Registrations))
	ws.Patch("/:id/registrations/:registrationId/attendance", staff, MarkAttendance(svc.Registrations))
	ws.Post("/:id/checkin", staff, CheckIn(svc.Registrations))

	api.Get("/registrations/:id/checkin-code", CheckInCode(svc.Registrations))

	api.Post("/refunds", RequestRefund(svc.Refunds))
	api.Get("/refunds", ListRefunds(svc.Refunds))
	api.Post("/refunds/:id/approve", admin, ApproveRefund(svc.Refunds))
	api.Post("/refunds/:id/reject", admin, RejectRefund(svc.Refunds))

	inv := api.Group("/inventory")
	inv.Get("/categories", ListCategories(svc.Inventory))
	inv.Post("/categories", staff, CreateCategory(svc.Inventory))
	inv.Put("/categories/:id", staff, UpdateCategory(svc.Inventory))
	inv.Delete("/categories/:id", staff, DeleteCategory(svc.Inventory))
	inv.Get("/containers", ListContainers(svc.Inventory))
	inv.Post("/containers", staff, CreateContainer(svc.Inventory))
	inv.Put("/containers/:id", staff, UpdateContainer(svc.Inventory))
	inv.Delete("/containers/:id", staff, DeleteContainer(svc.Inventory))
	inv.Get("/items", ListItems(svc.Inventory))
	inv.Post("/items", staff, CreateItem(svc.Inventory))
	inv.Get("/items/:id", GetItem(svc.Inventory))
	inv.Patch("/items/:id", staff, UpdateItem(svc.Inventory))
	inv.Delete("/items/:id", staff, DeleteItem(svc.Inventory))
	inv.Get("/items/:id/adjustments", ListAdjustments(svc.Inventory))
	inv.Post("/items/:id/adjustments", staff, AdjustItem(svc.Inventory))
	inv.Get("/items/:id/photo", ItemPhotoURL(svc.Inventory))
	inv.Put("/items/:id/photo", staff, UploadItemPhoto(svc.Inventory))

	api.Get("/members", staff, ListMembers(svc.Members))
	api.Put("/members/:userId/role", admin, ChangeMemberRole(svc.Members))

	api.Post("/invitations/accept", AcceptInvitation(svc.Invitations))
	api.Get("/invitations", admin, ListInvitations(svc.Invitations))
	api.Post("/invitations", admin, CreateInvitation(svc.Invitations))
	api.Post("/invitations/:id/revoke", admin, RevokeInvitation(svc.Invitations))

	api.Get("/analytics/overview", staff, AnalyticsOverview(svc.Analytics))
	api.Get("/analytics/workshops/:id", staff, AnalyticsWorkshop(svc.Analytics))
}
