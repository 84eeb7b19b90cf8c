package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubapi/internal/analytics"
	"clubapi/internal/auth"
	authMocks "clubapi/internal/auth/mocks"
	"clubapi/internal/http/middleware"
	"clubapi/internal/model"
	"clubapi/internal/repository/postgres"
	"clubapi/internal/service"
	serviceMocks "clubapi/internal/service/mocks"
	"clubapi/internal/validator"
)

var (
	guestClaims  = model.Claims{Subject: "guest-1", Email: "guest@club.test", Role: model.RoleGuest}
	memberClaims = model.Claims{Subject: "member-1", Email: "member@club.test", Role: model.RoleMember}
	staffClaims  = model.Claims{Subject: "staff-1", Email: "staff@club.test", Role: model.RoleStaff}
	adminClaims  = model.Claims{Subject: "admin-1", Email: "admin@club.test", Role: model.RoleAdmin}

	tokens = map[string]model.Claims{
		"guest":  guestClaims,
		"member": memberClaims,
		"staff":  staffClaims,
		"admin":  adminClaims,
	}
)

type testServer struct {
	app           *fiber.App
	workshops     *serviceMocks.MockWorkshopService
	registrations *serviceMocks.MockRegistrationService
	refunds       *serviceMocks.MockRefundService
	inventory     *serviceMocks.MockInventoryService
	invitations   *serviceMocks.MockInvitationService
	members       *serviceMocks.MockMemberService
	analytics     *serviceMocks.MockAnalyticsService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	verifier := new(authMocks.MockVerifier)
	resolver := new(authMocks.MockRoleResolver)
	for token, claims := range tokens {
		id := auth.Identity{Subject: claims.Subject, Email: claims.Email}
		verifier.On("Verify", mock.Anything, token).Return(id, nil).Maybe()
		resolver.On("Resolve", mock.Anything, id).Return(claims.Role, nil).Maybe()
	}
	verifier.On("Verify", mock.Anything, mock.Anything).Return(auth.Identity{}, auth.ErrInvalidToken).Maybe()

	s := &testServer{
		workshops:     new(serviceMocks.MockWorkshopService),
		registrations: new(serviceMocks.MockRegistrationService),
		refunds:       new(serviceMocks.MockRefundService),
		inventory:     new(serviceMocks.MockInventoryService),
		invitations:   new(serviceMocks.MockInvitationService),
		members:       new(serviceMocks.MockMemberService),
		analytics:     new(serviceMocks.MockAnalyticsService),
	}
	s.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	s.app.Use(middleware.RequestID())
	RegisterRoutes(s.app, nil, auth.Middleware(verifier, resolver), Services{
		Workshops:     s.workshops,
		Registrations: s.registrations,
		Refunds:       s.refunds,
		Inventory:     s.inventory,
		Invitations:   s.invitations,
		Members:       s.members,
		Analytics:     s.analytics,
	})
	t.Cleanup(func() {
		s.workshops.AssertExpectations(t)
		s.registrations.AssertExpectations(t)
		s.refunds.AssertExpectations(t)
		s.inventory.AssertExpectations(t)
		s.invitations.AssertExpectations(t)
		s.members.AssertExpectations(t)
		s.analytics.AssertExpectations(t)
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.RequestID)
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/workshops", "", nil)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/workshops", "forged", nil)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("role below the route minimum", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/workshops/"+uuid.NewString()+"/publish", "member", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/nothing-here", "member", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}

func TestListWorkshops(t *testing.T) {
	s := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		res := &service.ListResult[model.Workshop]{
			Items: []model.Workshop{{ID: uuid.NewString(), Title: "Soldering", Status: model.WorkshopPublished}},
			Total: 1,
		}
		s.workshops.On("List", mock.Anything, memberClaims, "published", 10, 20).Return(res, nil).Once()

		resp := s.do(t, http.MethodGet, "/api/workshops?status=published&limit=10&offset=20", "member", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got service.ListResult[model.Workshop]
		decodeData(t, resp, &got)
		assert.Equal(t, 1, got.Total)
		assert.Equal(t, "Soldering", got.Items[0].Title)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/workshops?limit=abc", "member", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("negative offset", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/workshops?offset=-1", "member", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		s.workshops.On("List", mock.Anything, memberClaims, "draft", 0, 0).
			Return(nil, fmt.Errorf("%w: unknown status %q", service.ErrInvalidInput, "draft")).Once()

		resp := s.do(t, http.MethodGet, "/api/workshops?status=draft", "member", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_INPUT", body.Error.Code)
		assert.Contains(t, body.Error.Message, "draft")
	})
}

func TestCreateWorkshop(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]any{
		"title":       "Soldering",
		"location":    "Lab",
		"starts_at":   "2030-05-01T18:00:00Z",
		"ends_at":     "2030-05-01T20:00:00Z",
		"capacity":    12,
		"price_cents": 1500,
	}
	byTitle := mock.MatchedBy(func(in service.CreateWorkshopInput) bool {
		return in.Title == "Soldering" && in.Capacity == 12 && in.PriceCents == 1500
	})

	t.Run("created", func(t *testing.T) {
		w := &model.Workshop{ID: uuid.NewString(), Title: "Soldering", Status: model.WorkshopPlanned}
		s.workshops.On("Create", mock.Anything, staffClaims, byTitle).Return(w, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops", "staff", payload)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Workshop
		decodeData(t, resp, &got)
		assert.Equal(t, w.ID, got.ID)
		assert.Equal(t, model.WorkshopPlanned, got.Status)
	})

	t.Run("validation details", func(t *testing.T) {
		verr := &validator.Error{Fields: map[string]string{"starts_at": "must be in the future"}}
		s.workshops.On("Create", mock.Anything, adminClaims, byTitle).Return(nil, verr).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops", "admin", payload)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		assert.Equal(t, "must be in the future", body.Error.Details["starts_at"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/workshops", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer staff")
		resp, err := s.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("members cannot create", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/workshops", "member", payload)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestWorkshopLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	t.Run("publish from the wrong state", func(t *testing.T) {
		s.workshops.On("Publish", mock.Anything, staffClaims, id).
			Return(nil, fmt.Errorf("%w: workshop is finished", service.ErrInvalidTransition)).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops/"+id+"/publish", "staff", nil)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/workshops/42/publish", "staff", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("cancel passes the reason", func(t *testing.T) {
		res := &service.CancelResult{
			Workshop:               &model.Workshop{ID: id, Status: model.WorkshopCancelled},
			CancelledRegistrations: 4,
			RefundsRequested:       2,
		}
		s.workshops.On("Cancel", mock.Anything, staffClaims, id, "instructor is ill").Return(res, nil).Once()

		resp := s.do(t, http.MethodPatch, "/api/workshops/"+id+"/cancel", "staff", map[string]string{"reason": "instructor is ill"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got service.CancelResult
		decodeData(t, resp, &got)
		assert.Equal(t, 4, got.CancelledRegistrations)
		assert.Equal(t, 2, got.RefundsRequested)
	})

	t.Run("delete", func(t *testing.T) {
		s.workshops.On("Delete", mock.Anything, adminClaims, id).Return(nil).Once()

		resp := s.do(t, http.MethodDelete, "/api/workshops/"+id, "admin", nil)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("interest methods", func(t *testing.T) {
		sum := &model.InterestSummary{WorkshopID: id, Count: 3, Interested: true}
		s.workshops.On("AddInterest", mock.Anything, memberClaims, id).Return(sum, nil).Once()
		s.workshops.On("Interest", mock.Anything, memberClaims, id).Return(sum, nil).Once()
		s.workshops.On("RemoveInterest", mock.Anything, memberClaims, id).
			Return(&model.InterestSummary{WorkshopID: id, Count: 2}, nil).Once()

		for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
			resp := s.do(t, method, "/api/workshops/"+id+"/interest", "member", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode, method)
		}
	})

	t.Run("generator unavailable", func(t *testing.T) {
		s.workshops.On("Generate", mock.Anything, staffClaims, service.GenerateWorkshopInput{Topic: "3D printing"}).
			Return(model.WorkshopDraft{}, fmt.Errorf("%w: no api key", service.ErrUnavailable)).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops/generate", "staff", map[string]string{"topic": "3D printing"})

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
		assert.Equal(t, "dependency unavailable", body.Error.Message)
	})
}

func TestRegistrations(t *testing.T) {
	s := newTestServer(t)
	workshopID := uuid.NewString()
	regID := uuid.NewString()

	t.Run("paid registration returns the client secret", func(t *testing.T) {
		res := &service.RegisterResult{
			Registration: &model.Registration{ID: regID, Status: model.RegistrationPendingPayment},
			ClientSecret: "pi_1_secret",
		}
		s.registrations.On("Register", mock.Anything, memberClaims, workshopID).Return(res, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops/"+workshopID+"/registrations", "member", nil)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got service.RegisterResult
		decodeData(t, resp, &got)
		assert.Equal(t, "pi_1_secret", got.ClientSecret)
	})

	t.Run("full", func(t *testing.T) {
		s.registrations.On("Register", mock.Anything, guestClaims, workshopID).Return(nil, service.ErrWorkshopFull).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops/"+workshopID+"/registrations", "guest", nil)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "WORKSHOP_FULL", decodeError(t, resp).Error.Code)
	})

	t.Run("payment provider failure", func(t *testing.T) {
		s.registrations.On("Register", mock.Anything, staffClaims, workshopID).
			Return(nil, fmt.Errorf("%w: card declined", service.ErrPaymentProvider)).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops/"+workshopID+"/registrations", "staff", nil)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "PAYMENT_PROVIDER_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("attendance", func(t *testing.T) {
		reg := &model.Registration{ID: regID, Attendance: model.AttendanceAttended}
		s.registrations.On("MarkAttendance", mock.Anything, staffClaims, workshopID, regID, "attended").Return(reg, nil).Once()

		resp := s.do(t, http.MethodPatch, "/api/workshops/"+workshopID+"/registrations/"+regID+"/attendance", "staff",
			map[string]string{"attendance": "attended"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cancel own", func(t *testing.T) {
		res := &service.CancelRegistrationResult{Registration: &model.Registration{ID: regID}, RefundRequested: true}
		s.registrations.On("CancelOwn", mock.Anything, memberClaims, workshopID).Return(res, nil).Once()

		resp := s.do(t, http.MethodDelete, "/api/workshops/"+workshopID+"/registrations/me", "member", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got service.CancelRegistrationResult
		decodeData(t, resp, &got)
		assert.True(t, got.RefundRequested)
	})

	t.Run("check-in code is a png", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\nrest")
		s.registrations.On("CheckInCode", mock.Anything, memberClaims, regID).Return(png, nil).Once()

		resp := s.do(t, http.MethodGet, "/api/registrations/"+regID+"/checkin-code", "member", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		got, _ := io.ReadAll(resp.Body)
		assert.Equal(t, png, got)
	})

	t.Run("check in", func(t *testing.T) {
		s.registrations.On("CheckIn", mock.Anything, staffClaims, workshopID, "ticket").
			Return(&model.Registration{ID: regID, Attendance: model.AttendanceAttended}, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/workshops/"+workshopID+"/checkin", "staff", map[string]string{"token": "ticket"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestStripeWebhook(t *testing.T) {
	s := newTestServer(t)
	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`

	send := func(signature string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Stripe-Signature", signature)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("accepted without a bearer token", func(t *testing.T) {
		s.registrations.On("HandlePaymentWebhook", mock.Anything, []byte(payload), "t=1,v1=good").Return(nil).Once()

		resp := send("t=1,v1=good")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad signature", func(t *testing.T) {
		s.registrations.On("HandlePaymentWebhook", mock.Anything, []byte(payload), "t=1,v1=bad").
			Return(fmt.Errorf("%w: signature mismatch", service.ErrInvalidInput)).Once()

		resp := send("t=1,v1=bad")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRefunds(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	t.Run("request", func(t *testing.T) {
		r := &model.Refund{ID: id, Status: model.RefundRequested}
		s.refunds.On("Request", mock.Anything, memberClaims, "reg-1", "moved away").Return(r, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/refunds", "member", map[string]string{"registration_id": "reg-1", "reason": "moved away"})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("approve", func(t *testing.T) {
		r := &model.Refund{ID: id, Status: model.RefundProcessed, ProviderRefundID: "re_1"}
		s.refunds.On("Approve", mock.Anything, adminClaims, id, "ok").Return(r, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/refunds/"+id+"/approve", "admin", map[string]string{"note": "ok"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.Refund
		decodeData(t, resp, &got)
		assert.Equal(t, model.RefundProcessed, got.Status)
	})

	t.Run("concurrent approval", func(t *testing.T) {
		s.refunds.On("Approve", mock.Anything, adminClaims, id, "").
			Return(nil, fmt.Errorf("%w: refund is being processed", service.ErrConflict)).Once()

		resp := s.do(t, http.MethodPost, "/api/refunds/"+id+"/approve", "admin", nil)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", decodeError(t, resp).Error.Code)
	})

	t.Run("staff cannot decide", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/refunds/"+id+"/reject", "staff", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("row-level security denial", func(t *testing.T) {
		denied := postgres.MapError(&pgconn.PgError{Code: "42501", Message: `new row violates row-level security policy for table "refunds"`})
		s.refunds.On("List", mock.Anything, memberClaims, "").Return(nil, fmt.Errorf("list refunds: %w", denied)).Once()

		resp := s.do(t, http.MethodGet, "/api/refunds", "member", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "FORBIDDEN", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "row-level security")
		assert.NotContains(t, body.Error.Message, "refunds\"")
	})
}

func TestInventory(t *testing.T) {
	s := newTestServer(t)
	itemID := uuid.NewString()

	t.Run("list items with filters", func(t *testing.T) {
		f := model.ItemFilter{CategoryID: "cat", Query: "drill", LowStock: true}
		s.inventory.On("ListItems", mock.Anything, memberClaims, f, 5, 0).
			Return(&service.ListResult[model.Item]{Items: []model.Item{}, Total: 0}, nil).Once()

		resp := s.do(t, http.MethodGet, "/api/inventory/items?category_id=cat&q=drill&low_stock=true&limit=5", "member", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad low_stock", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/inventory/items?low_stock=maybe", "member", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LOW_STOCK", decodeError(t, resp).Error.Code)
	})

	t.Run("adjust", func(t *testing.T) {
		res := &service.AdjustResult{Item: &model.Item{ID: itemID, Quantity: 3}, Adjustment: &model.Adjustment{Delta: -2}}
		s.inventory.On("Adjust", mock.Anything, staffClaims, itemID, service.AdjustInput{Delta: -2, Note: "used"}).Return(res, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/inventory/items/"+itemID+"/adjustments", "staff", map[string]any{"delta": -2, "note": "used"})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("referenced category", func(t *testing.T) {
		catID := uuid.NewString()
		s.inventory.On("DeleteCategory", mock.Anything, staffClaims, catID).
			Return(fmt.Errorf("%w: inventory_items_category_id_fkey", service.ErrConflict)).Once()

		resp := s.do(t, http.MethodDelete, "/api/inventory/categories/"+catID, "staff", nil)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("upload photo", func(t *testing.T) {
		content := []byte("\x89PNG fake image")
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="drill.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write(content)
		require.NoError(t, mw.Close())

		s.inventory.On("UploadPhoto", mock.Anything, staffClaims, itemID, mock.Anything, "drill.png", "image/png", int64(len(content))).
			Return(&model.Item{ID: itemID, PhotoKey: "inventory/" + itemID + "/x.png"}, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/inventory/items/"+itemID+"/photo", buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer staff")
		resp, err := s.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("upload without a file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/inventory/items/"+itemID+"/photo", nil)
		req.Header.Set("Authorization", "Bearer staff")
		resp, err := s.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("photo url", func(t *testing.T) {
		s.inventory.On("PhotoURL", mock.Anything, memberClaims, itemID).Return("https://minio/signed", nil).Once()

		resp := s.do(t, http.MethodGet, "/api/inventory/items/"+itemID+"/photo", "member", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got map[string]string
		decodeData(t, resp, &got)
		assert.Equal(t, "https://minio/signed", got["url"])
	})
}

func TestMembersAndInvitations(t *testing.T) {
	s := newTestServer(t)

	t.Run("navigation follows the caller's role", func(t *testing.T) {
		s.members.On("Navigation", staffClaims).Return(model.NavigationFor(model.RoleStaff)).Once()

		resp := s.do(t, http.MethodGet, "/api/navigation", "staff", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got []model.NavItem
		decodeData(t, resp, &got)
		assert.Len(t, got, len(model.NavigationFor(model.RoleStaff)))
	})

	t.Run("change role", func(t *testing.T) {
		s.members.On("ChangeRole", mock.Anything, adminClaims, "member-1", "staff").
			Return(&model.Member{UserID: "member-1", Role: model.RoleStaff}, nil).Once()

		resp := s.do(t, http.MethodPut, "/api/members/member-1/role", "admin", map[string]string{"role": "staff"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invite", func(t *testing.T) {
		in := service.InviteInput{Email: "new@club.test", Role: "member"}
		res := &service.InviteResult{Invitation: &model.Invitation{Email: in.Email}, Token: "tok"}
		s.invitations.On("Invite", mock.Anything, adminClaims, in).Return(res, nil).Once()

		resp := s.do(t, http.MethodPost, "/api/invitations", "admin", in)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got service.InviteResult
		decodeData(t, resp, &got)
		assert.Equal(t, "tok", got.Token)
	})

	t.Run("accept with another email", func(t *testing.T) {
		s.invitations.On("Accept", mock.Anything, guestClaims, "tok").
			Return(nil, fmt.Errorf("%w: invitation was sent to another email address", service.ErrForbidden)).Once()

		resp := s.do(t, http.MethodPost, "/api/invitations/accept", "guest", map[string]string{"token": "tok"})

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("staff cannot list invitations", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/invitations", "staff", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAnalytics(t *testing.T) {
	s := newTestServer(t)

	t.Run("overview", func(t *testing.T) {
		out := &analytics.Overview{LowStockItems: 3, AttendanceRate: 0.8}
		s.analytics.On("Overview", mock.Anything, staffClaims).Return(out, nil).Once()

		resp := s.do(t, http.MethodGet, "/api/analytics/overview", "staff", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got analytics.Overview
		decodeData(t, resp, &got)
		assert.Equal(t, 3, got.LowStockItems)
	})

	t.Run("workshop not found", func(t *testing.T) {
		id := uuid.NewString()
		s.analytics.On("Workshop", mock.Anything, adminClaims, id).Return(nil, service.ErrNotFound).Once()

		resp := s.do(t, http.MethodGet, "/api/analytics/workshops/"+id, "admin", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("members are refused", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/analytics/overview", "member", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "not found", err: fmt.Errorf("%w: workshop", service.ErrNotFound), wantStatus: 404, wantCode: "NOT_FOUND"},
		{name: "unauthenticated", err: service.ErrUnauthenticated, wantStatus: 401, wantCode: "UNAUTHENTICATED"},
		{name: "deadline", err: fmt.Errorf("begin tx: %w", context.DeadlineExceeded), wantStatus: 503, wantCode: "SERVICE_UNAVAILABLE"},
		{name: "unexpected", err: errors.New("pq: connection reset"), wantStatus: 500, wantCode: "INTERNAL_ERROR", wantMsg: "internal server error"},
		{name: "fiber bad request", err: fiber.ErrBadRequest, wantStatus: 400, wantCode: "BAD_REQUEST"},
		{name: "fiber too large", err: fiber.ErrRequestEntityTooLarge, wantStatus: 413, wantCode: "PAYLOAD_TOO_LARGE"},
		{name: "fiber teapot", err: fiber.ErrTeapot, wantStatus: 500, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
			app.Use(middleware.RequestID())
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error.Message)
			}
		})
	}
}
