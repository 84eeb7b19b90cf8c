package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clubapi/internal/cache"
	"clubapi/internal/events"
	"clubapi/internal/model"
	"clubapi/internal/notify"
	"clubapi/internal/payment"
	"clubapi/internal/repository"
)

const refundLockTTL = 30 * time.Second

type RequestRefundInput struct {
	RegistrationID string `json:"registration_id" validate:"required,uuid"`
	Reason         string `json:"reason" validate:"required,max=500"`
}

// RefundService defines refund request and decision use cases.
type RefundService interface {
	// Request asks for the money of a cancelled paid registration back.
	Request(ctx context.Context, claims model.Claims, registrationID, reason string) (*model.Refund, error)
	// List returns refunds visible to the caller, optionally filtered by status.
	List(ctx context.Context, claims model.Claims, status string) ([]model.Refund, error)
	// Approve pays the refund out through the payment provider. Concurrent approvals of the
	// same refund are rejected with ErrConflict.
	Approve(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error)
	Reject(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error)
}

type refundService struct {
	Deps
	gateway payment.Gateway
	locker  cache.Locker
}

// NewRefundService constructs a new RefundService.
func NewRefundService(deps Deps, gateway payment.Gateway, locker cache.Locker) RefundService {
	if gateway == nil {
		gateway = payment.Disabled{}
	}
	if locker == nil {
		locker = cache.NewLocalLocker()
	}
	return &refundService{Deps: deps.withDefaults(), gateway: gateway, locker: locker}
}

func (s *refundService) Request(ctx context.Context, claims model.Claims, registrationID, reason string) (*model.Refund, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if err := requireID("registration_id", registrationID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	now := s.now()

	var created *model.Refund
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		reg, err := st.Registrations().FindByIDForUpdate(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != claims.Subject {
			return fmt.Errorf("%w: registration belongs to another member", ErrForbidden)
		}
		if reg.Status != model.RegistrationCancelled {
			return fmt.Errorf("%w: registration is %s", ErrInvalidTransition, reg.Status)
		}
		if !reg.Paid() {
			return fmt.Errorf("%w: nothing was paid for this registration", ErrInvalidTransition)
		}
		_, err = st.Refunds().FindOpenByRegistration(ctx, reg.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: a refund is already pending", ErrConflict)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		refund := model.RefundFor(*reg, reason, now)
		refund.ID = uuid.NewString()
		created, err = st.Refunds().Create(ctx, &refund)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *refundService) List(ctx context.Context, claims model.Claims, status string) ([]model.Refund, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	filter := model.RefundStatus(status)
	switch filter {
	case "", model.RefundRequested, model.RefundProcessed, model.RefundRejected, model.RefundFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	var refunds []model.Refund
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		refunds, err = st.Refunds().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(refunds), nil
}

func (s *refundService) Approve(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error) {
	if err := requireRole(claims, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := requireID("id", refundID); err != nil {
		return nil, err
	}

	lock, err := s.locker.Acquire(ctx, "refund:"+refundID, refundLockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			return nil, fmt.Errorf("%w: refund is being processed", ErrConflict)
		}
		return nil, fmt.Errorf("%w: acquire refund lock: %v", ErrUnavailable, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("refund_id", refundID).Msg("release refund lock")
		}
	}()

	var (
		refund   *model.Refund
		reg      *model.Registration
		workshop *model.Workshop
	)
	err = s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		refund, err = st.Refunds().FindByID(ctx, refundID)
		if err != nil {
			return err
		}
		if !refund.Status.Open() {
			return fmt.Errorf("%w: refund is %s", ErrInvalidTransition, refund.Status)
		}
		reg, err = st.Registrations().FindByID(ctx, refund.RegistrationID)
		if err != nil {
			return err
		}
		workshop, err = st.Workshops().FindByID(ctx, reg.WorkshopID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if reg.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: registration has no payment", ErrInvalidTransition)
	}

	providerID, payErr := s.gateway.Refund(ctx, payment.RefundRequest{
		RefundID:        refund.ID,
		PaymentIntentID: reg.PaymentIntentID,
		AmountCents:     refund.AmountCents,
	})
	if errors.Is(payErr, payment.ErrNotConfigured) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, payErr)
	}

	now := s.now()
	refund.DecidedBy = claims.Subject
	refund.DecidedAt = &now
	refund.DecisionNote = strings.TrimSpace(note)
	if payErr != nil {
		refund.Status = model.RefundFailed
		refund.DecisionNote = joinNote(refund.DecisionNote, payErr.Error())
	} else {
		refund.Status = model.RefundProcessed
		refund.ProviderRefundID = providerID
	}

	err = s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		current, err := st.Refunds().FindByIDForUpdate(ctx, refund.ID)
		if err != nil {
			return err
		}
		if !current.Status.Open() {
			return fmt.Errorf("%w: refund is %s", ErrInvalidTransition, current.Status)
		}
		if err := st.Refunds().Decide(ctx, refund); err != nil {
			return err
		}
		if refund.Status == model.RefundProcessed {
			return st.Registrations().UpdateStatus(ctx, reg.ID, model.RegistrationRefunded)
		}
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("refund_id", refund.ID).
			Str("provider_refund_id", providerID).
			Msg("record refund decision")
		return nil, fmt.Errorf("record refund decision: %w", err)
	}

	s.Metrics.RefundDecision(string(refund.Status))
	if payErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, payErr)
	}

	s.publish(ctx, events.New(events.RefundProcessed, refund.ID, claims.Subject, refund))
	s.enqueue(ctx, notify.Job{
		Kind: notify.KindRefundProcessed,
		To:   reg.Email,
		Data: map[string]string{
			"amount":   formatAmount(refund.AmountCents),
			"currency": strings.ToUpper(refund.Currency),
			"workshop": workshop.Title,
		},
	})
	return refund, nil
}

func (s *refundService) Reject(ctx context.Context, claims model.Claims, refundID, note string) (*model.Refund, error) {
	if err := requireRole(claims, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := requireID("id", refundID); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("%w: note is required when rejecting", ErrInvalidInput)
	}
	now := s.now()

	var refund *model.Refund
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		refund, err = st.Refunds().FindByIDForUpdate(ctx, refundID)
		if err != nil {
			return err
		}
		if !refund.Status.Open() {
			return fmt.Errorf("%w: refund is %s", ErrInvalidTransition, refund.Status)
		}
		refund.Status = model.RefundRejected
		refund.DecidedBy = claims.Subject
		refund.DecidedAt = &now
		refund.DecisionNote = note
		return st.Refunds().Decide(ctx, refund)
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.RefundDecision(string(model.RefundRejected))
	return refund, nil
}

func joinNote(note, cause string) string {
	if note == "" {
		return cause
	}
	return note + "; " + cause
}

func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}
