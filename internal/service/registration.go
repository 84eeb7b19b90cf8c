package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clubapi/internal/checkin"
	"clubapi/internal/events"
	"clubapi/internal/model"
	"clubapi/internal/notify"
	"clubapi/internal/payment"
	"clubapi/internal/repository"
)

const latePaymentReason = "payment received after cancellation"

// TicketSigner issues and verifies check-in tokens.
type TicketSigner interface {
	Issue(t checkin.Ticket) (string, error)
	Verify(token string) (checkin.Ticket, error)
}

type RegisterResult struct {
	Registration *model.Registration `json:"registration"`
	// ClientSecret completes the card payment on the client. Empty for free workshops.
	ClientSecret string `json:"client_secret,omitempty"`
}

type CancelRegistrationResult struct {
	Registration    *model.Registration `json:"registration"`
	RefundRequested bool                `json:"refund_requested"`
}

// RegistrationService defines registration, attendance and payment confirmation use cases.
type RegistrationService interface {
	// Register takes a seat in a published workshop for the caller.
	Register(ctx context.Context, claims model.Claims, workshopID string) (*RegisterResult, error)
	// CancelOwn gives the caller's seat back before the workshop starts.
	CancelOwn(ctx context.Context, claims model.Claims, workshopID string) (*CancelRegistrationResult, error)
	ListForWorkshop(ctx context.Context, claims model.Claims, workshopID string) ([]model.Registration, error)
	ListMine(ctx context.Context, claims model.Claims) ([]model.Registration, error)

	MarkAttendance(ctx context.Context, claims model.Claims, workshopID, registrationID, attendance string) (*model.Registration, error)
	// CheckInCode renders a PNG QR code for the caller's confirmed registration.
	CheckInCode(ctx context.Context, claims model.Claims, registrationID string) ([]byte, error)
	// CheckIn marks the ticket holder as attended.
	CheckIn(ctx context.Context, claims model.Claims, workshopID, token string) (*model.Registration, error)

	// HandlePaymentWebhook applies a signed provider event to the matching registration.
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error
}

type registrationService struct {
	Deps
	gateway payment.Gateway
	tickets TicketSigner
}

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(deps Deps, gateway payment.Gateway, tickets TicketSigner) RegistrationService {
	if gateway == nil {
		gateway = payment.Disabled{}
	}
	return &registrationService{Deps: deps.withDefaults(), gateway: gateway, tickets: tickets}
}

func (s *registrationService) Register(ctx context.Context, claims model.Claims, workshopID string) (*RegisterResult, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if err := requireID("workshop_id", workshopID); err != nil {
		return nil, err
	}
	now := s.now()

	var (
		w   *model.Workshop
		reg *model.Registration
	)
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		// Status, capacity and start are read under the seat lock shared with Cancel, Finish and Update.
		if err := st.Registrations().LockSeats(ctx, workshopID); err != nil {
			return err
		}
		var err error
		w, err = st.Workshops().FindByID(ctx, workshopID)
		if err != nil {
			return err
		}
		if w.Status != model.WorkshopPublished {
			return fmt.Errorf("%w: workshop is %s", ErrInvalidTransition, w.Status)
		}
		if w.Started(now) {
			return fmt.Errorf("%w: workshop has already started", ErrInvalidTransition)
		}
		_, err = st.Registrations().FindActive(ctx, workshopID, claims.Subject)
		switch {
		case err == nil:
			return fmt.Errorf("%w: already registered", ErrConflict)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		active, err := st.Registrations().CountActive(ctx, workshopID)
		if err != nil {
			return err
		}
		if active >= w.Capacity {
			return ErrWorkshopFull
		}

		status := model.RegistrationConfirmed
		if w.Paid() {
			status = model.RegistrationPendingPayment
		}
		reg, err = st.Registrations().Create(ctx, &model.Registration{
			ID:          uuid.NewString(),
			WorkshopID:  workshopID,
			UserID:      claims.Subject,
			Email:       claims.Email,
			Status:      status,
			Attendance:  model.AttendanceUnknown,
			AmountCents: w.PriceCents,
			Currency:    w.Currency,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &RegisterResult{Registration: reg}
	if w.Paid() {
		intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
			AmountCents:    reg.AmountCents,
			Currency:       reg.Currency,
			RegistrationID: reg.ID,
			WorkshopID:     w.ID,
			UserID:         reg.UserID,
			Email:          reg.Email,
		})
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("registration_id", reg.ID).Msg("create payment intent")
			s.releaseSeat(ctx, claims, reg)
			if errors.Is(err, payment.ErrNotConfigured) {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
		}
		err = s.Tx.InScope(ctx, claims, func(st repository.Store) error {
			return st.Registrations().SetPaymentIntent(ctx, reg.ID, intent.ID)
		})
		if err != nil {
			// No webhook can match the registration without the intent id.
			if cerr := s.gateway.CancelPaymentIntent(ctx, intent.ID); cerr != nil {
				zerolog.Ctx(ctx).Error().Err(cerr).Str("payment_intent_id", intent.ID).Msg("cancel orphaned payment intent")
			}
			s.releaseSeat(ctx, claims, reg)
			return nil, fmt.Errorf("store payment intent: %w", err)
		}
		reg.PaymentIntentID = intent.ID
		res.ClientSecret = intent.ClientSecret
	}

	s.Metrics.Registration(string(reg.Status))
	s.publish(ctx, events.New(events.RegistrationCreated, reg.ID, claims.Subject, reg))
	if reg.Status == model.RegistrationConfirmed {
		s.enqueue(ctx, confirmationJob(reg, w))
	}
	return res, nil
}

// releaseSeat cancels a pending registration whose payment could not be started.
func (s *registrationService) releaseSeat(ctx context.Context, claims model.Claims, reg *model.Registration) {
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		return st.Registrations().UpdateStatus(ctx, reg.ID, model.RegistrationCancelled)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("registration_id", reg.ID).Msg("release seat after payment failure")
		return
	}
	s.Metrics.Registration(string(model.RegistrationCancelled))
}

func (s *registrationService) CancelOwn(ctx context.Context, claims model.Claims, workshopID string) (*CancelRegistrationResult, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if err := requireID("workshop_id", workshopID); err != nil {
		return nil, err
	}
	now := s.now()

	res := &CancelRegistrationResult{}
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		w, err := st.Workshops().FindByID(ctx, workshopID)
		if err != nil {
			return err
		}
		if w.Started(now) || w.Status.Terminal() {
			return fmt.Errorf("%w: workshop is %s", ErrInvalidTransition, w.Status)
		}
		reg, err := st.Registrations().FindActive(ctx, workshopID, claims.Subject)
		if err != nil {
			return err
		}
		if err := st.Registrations().UpdateStatus(ctx, reg.ID, model.RegistrationCancelled); err != nil {
			return err
		}
		if reg.Status == model.RegistrationConfirmed && reg.Paid() {
			refund := model.RefundFor(*reg, "registration cancelled", now)
			refund.ID = uuid.NewString()
			if _, err := st.Refunds().Create(ctx, &refund); err != nil {
				return fmt.Errorf("request refund: %w", err)
			}
			res.RefundRequested = true
		}
		reg.Status = model.RegistrationCancelled
		reg.UpdatedAt = now
		res.Registration = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Registration(string(model.RegistrationCancelled))
	s.publish(ctx, events.New(events.RegistrationCancelled, res.Registration.ID, claims.Subject, res))
	return res, nil
}

func (s *registrationService) ListForWorkshop(ctx context.Context, claims model.Claims, workshopID string) ([]model.Registration, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("workshop_id", workshopID); err != nil {
		return nil, err
	}
	var regs []model.Registration
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		if _, err := st.Workshops().FindByID(ctx, workshopID); err != nil {
			return err
		}
		var err error
		regs, err = st.Registrations().ListByWorkshop(ctx, workshopID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(regs), nil
}

func (s *registrationService) ListMine(ctx context.Context, claims model.Claims) ([]model.Registration, error) {
	if !claims.Authenticated() {
		return nil, ErrUnauthenticated
	}
	var regs []model.Registration
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		regs, err = st.Registrations().ListByUser(ctx, claims.Subject)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(regs), nil
}

func (s *registrationService) MarkAttendance(ctx context.Context, claims model.Claims, workshopID, registrationID, attendance string) (*model.Registration, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("workshop_id", workshopID); err != nil {
		return nil, err
	}
	if err := requireID("registration_id", registrationID); err != nil {
		return nil, err
	}
	att := model.Attendance(attendance)
	if !att.Valid() {
		return nil, fmt.Errorf("%w: attendance must be attended or no_show", ErrInvalidInput)
	}

	var reg *model.Registration
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		w, err := st.Workshops().FindByID(ctx, workshopID)
		if err != nil {
			return err
		}
		if w.Status != model.WorkshopPublished && w.Status != model.WorkshopFinished {
			return fmt.Errorf("%w: attendance cannot be recorded for a %s workshop", ErrInvalidTransition, w.Status)
		}
		reg, err = s.confirmedRegistration(ctx, st, workshopID, registrationID)
		if err != nil {
			return err
		}
		checkedInAt := reg.CheckedInAt
		if att == model.AttendanceNoShow {
			checkedInAt = nil
		}
		if err := st.Registrations().SetAttendance(ctx, reg.ID, att, checkedInAt); err != nil {
			return err
		}
		reg.Attendance = att
		reg.CheckedInAt = checkedInAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) CheckInCode(ctx context.Context, claims model.Claims, registrationID string) ([]byte, error) {
	if !claims.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if err := requireID("registration_id", registrationID); err != nil {
		return nil, err
	}
	if s.tickets == nil {
		return nil, fmt.Errorf("%w: check-in tokens are not configured", ErrUnavailable)
	}

	var reg *model.Registration
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		reg, err = st.Registrations().FindByID(ctx, registrationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if reg.UserID != claims.Subject && !claims.Role.AtLeast(model.RoleStaff) {
		return nil, ErrForbidden
	}
	if reg.Status != model.RegistrationConfirmed {
		return nil, fmt.Errorf("%w: registration is %s", ErrInvalidTransition, reg.Status)
	}

	token, err := s.tickets.Issue(checkin.Ticket{
		RegistrationID: reg.ID,
		WorkshopID:     reg.WorkshopID,
		UserID:         reg.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue check-in token: %w", err)
	}
	return checkin.QRCode(token)
}

func (s *registrationService) CheckIn(ctx context.Context, claims model.Claims, workshopID, token string) (*model.Registration, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("workshop_id", workshopID); err != nil {
		return nil, err
	}
	if s.tickets == nil {
		return nil, fmt.Errorf("%w: check-in tokens are not configured", ErrUnavailable)
	}
	ticket, err := s.tickets.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if ticket.WorkshopID != workshopID {
		return nil, fmt.Errorf("%w: ticket belongs to another workshop", ErrInvalidInput)
	}
	now := s.now()

	var reg *model.Registration
	err = s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		w, err := st.Workshops().FindByID(ctx, workshopID)
		if err != nil {
			return err
		}
		if w.Status != model.WorkshopPublished {
			return fmt.Errorf("%w: check-in is closed for a %s workshop", ErrInvalidTransition, w.Status)
		}
		reg, err = s.confirmedRegistration(ctx, st, workshopID, ticket.RegistrationID)
		if err != nil {
			return err
		}
		if reg.UserID != ticket.UserID {
			return fmt.Errorf("%w: ticket does not match the registration", ErrInvalidInput)
		}
		if reg.Attendance == model.AttendanceAttended && reg.CheckedInAt != nil {
			return nil
		}
		if err := st.Registrations().SetAttendance(ctx, reg.ID, model.AttendanceAttended, &now); err != nil {
			return err
		}
		reg.Attendance = model.AttendanceAttended
		reg.CheckedInAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) confirmedRegistration(ctx context.Context, st repository.Store, workshopID, registrationID string) (*model.Registration, error) {
	reg, err := st.Registrations().FindByIDForUpdate(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.WorkshopID != workshopID {
		return nil, fmt.Errorf("%w: registration is not part of this workshop", ErrNotFound)
	}
	if reg.Status != model.RegistrationConfirmed {
		return nil, fmt.Errorf("%w: registration is %s", ErrInvalidTransition, reg.Status)
	}
	return reg, nil
}

func (s *registrationService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	switch {
	case errors.Is(err, payment.ErrNotConfigured):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	log := zerolog.Ctx(ctx).With().Str("stripe_event", evt.ID).Str("payment_intent", evt.PaymentIntentID).Logger()
	if evt.Outcome == payment.OutcomeIgnored {
		log.Debug().Str("type", evt.Type).Msg("webhook ignored")
		return nil
	}
	now := s.now()

	var (
		reg       *model.Registration
		w         *model.Workshop
		confirmed bool
		refunded  bool
	)
	err = s.Tx.InScope(ctx, model.ServiceClaims(), func(st repository.Store) error {
		found, err := st.Registrations().FindByPaymentIntent(ctx, evt.PaymentIntentID)
		if err != nil {
			return err
		}
		reg, err = st.Registrations().FindByIDForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}

		switch evt.Outcome {
		case payment.OutcomeSucceeded:
			switch reg.Status {
			case model.RegistrationPendingPayment:
				if err := st.Registrations().UpdateStatus(ctx, reg.ID, model.RegistrationConfirmed); err != nil {
					return err
				}
				confirmed = true
				reg.Status = model.RegistrationConfirmed
				w, err = st.Workshops().FindByID(ctx, reg.WorkshopID)
				return err
			case model.RegistrationCancelled:
				// The seat was released while the card was being charged.
				if _, err := st.Refunds().FindOpenByRegistration(ctx, reg.ID); err == nil {
					return nil
				} else if !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				refund := model.RefundFor(*reg, latePaymentReason, now)
				refund.ID = uuid.NewString()
				refunded = true
				_, err := st.Refunds().Create(ctx, &refund)
				return err
			}
		case payment.OutcomeFailed:
			if reg.Status == model.RegistrationPendingPayment {
				reg.Status = model.RegistrationCancelled
				return st.Registrations().UpdateStatus(ctx, reg.ID, model.RegistrationCancelled)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn().Msg("webhook for unknown payment intent")
		}
		return fmt.Errorf("apply payment event: %w", err)
	}

	log.Info().Str("registration_id", reg.ID).Str("status", string(reg.Status)).Bool("refund_requested", refunded).Msg("payment event applied")
	if confirmed {
		s.Metrics.Registration(string(model.RegistrationConfirmed))
		s.enqueue(ctx, confirmationJob(reg, w))
	}
	return nil
}

func confirmationJob(reg *model.Registration, w *model.Workshop) notify.Job {
	data := map[string]string{"registration_id": reg.ID}
	if w != nil {
		data["workshop"] = w.Title
		data["starts_at"] = w.StartsAt.Format(timeLayout)
	}
	return notify.Job{Kind: notify.KindRegistrationConfirmed, To: reg.Email, Data: data}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
