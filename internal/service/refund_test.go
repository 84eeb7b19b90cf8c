package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubapi/internal/cache"
	cacheMocks "clubapi/internal/cache/mocks"
	"clubapi/internal/events"
	"clubapi/internal/model"
	"clubapi/internal/notify"
	"clubapi/internal/payment"
	payMocks "clubapi/internal/payment/mocks"
	"clubapi/internal/repository"
)

func cancelledPaidRegistration() *model.Registration {
	return &model.Registration{
		ID:              registrationID,
		WorkshopID:      workshopID,
		UserID:          memberClaims.Subject,
		Email:           memberClaims.Email,
		Status:          model.RegistrationCancelled,
		AmountCents:     1250,
		Currency:        "eur",
		PaymentIntentID: "pi_42",
	}
}

func openRefund() *model.Refund {
	return &model.Refund{
		ID:             refundID,
		RegistrationID: registrationID,
		UserID:         memberClaims.Subject,
		AmountCents:    1250,
		Currency:       "eur",
		Reason:         "registration cancelled",
		Status:         model.RefundRequested,
		CreatedAt:      testNow.Add(-time.Hour),
	}
}

func TestRefundService_Request(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		reg      func() *model.Registration
		existing *model.Refund
		wantErr  error
	}{
		{
			name: "cancelled paid registration",
			reg:  cancelledPaidRegistration,
		},
		{
			name: "someone else's registration",
			reg: func() *model.Registration {
				r := cancelledPaidRegistration()
				r.UserID = "member-2"
				return r
			},
			wantErr: ErrForbidden,
		},
		{
			name: "registration still confirmed",
			reg: func() *model.Registration {
				r := cancelledPaidRegistration()
				r.Status = model.RegistrationConfirmed
				return r
			},
			wantErr: ErrInvalidTransition,
		},
		{
			name: "free registration",
			reg: func() *model.Registration {
				r := cancelledPaidRegistration()
				r.AmountCents = 0
				r.PaymentIntentID = ""
				return r
			},
			wantErr: ErrInvalidTransition,
		},
		{
			name:     "refund already pending",
			reg:      cancelledPaidRegistration,
			existing: openRefund(),
			wantErr:  ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.tx.On("InScope", ctx, memberClaims).Return(nil)
			f.tx.Store.RegistrationRepo.On("FindByIDForUpdate", ctx, registrationID).Return(tt.reg(), nil)
			reg := tt.reg()
			if reg.UserID == memberClaims.Subject && reg.Status == model.RegistrationCancelled && reg.Paid() {
				if tt.existing != nil {
					f.tx.Store.RefundRepo.On("FindOpenByRegistration", ctx, registrationID).Return(tt.existing, nil)
				} else {
					f.tx.Store.RefundRepo.On("FindOpenByRegistration", ctx, registrationID).Return(nil, repository.ErrNotFound)
				}
			}
			if tt.wantErr == nil {
				f.tx.Store.RefundRepo.On("Create", ctx, mock.MatchedBy(func(r *model.Refund) bool {
					return r.ID != "" && r.AmountCents == 1250 && r.Reason == "changed plans" && r.Status == model.RefundRequested
				})).Return(nil, nil)
			}
			svc := NewRefundService(f.deps(), nil, nil)

			got, err := svc.Request(ctx, memberClaims, registrationID, "  changed plans ")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, registrationID, got.RegistrationID)
			}
			f.assert(t)
		})
	}

	t.Run("reason is required", func(t *testing.T) {
		f := newFixture()
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.Request(ctx, memberClaims, registrationID, " ")

		assert.ErrorIs(t, err, ErrInvalidInput)
		f.assert(t)
	})
}

func TestRefundService_Approve(t *testing.T) {
	ctx := context.Background()

	expectReads := func(f *fixture, refund *model.Refund) {
		f.tx.On("InReadScope", ctx, adminClaims).Return(nil)
		f.tx.Store.RefundRepo.On("FindByID", ctx, refundID).Return(refund, nil)
		if refund.Status.Open() {
			f.tx.Store.RegistrationRepo.On("FindByID", ctx, registrationID).Return(cancelledPaidRegistration(), nil)
			f.tx.Store.WorkshopRepo.On("FindByID", ctx, workshopID).Return(publishedWorkshop(), nil)
		}
	}

	t.Run("processed through the provider", func(t *testing.T) {
		f := newFixture()
		gw := new(payMocks.MockGateway)
		locker := cache.NewLocalLocker()
		expectReads(f, openRefund())
		gw.On("Refund", ctx, payment.RefundRequest{RefundID: refundID, PaymentIntentID: "pi_42", AmountCents: 1250}).Return("re_1", nil)
		f.tx.On("InScope", ctx, adminClaims).Return(nil)
		f.tx.Store.RefundRepo.On("FindByIDForUpdate", ctx, refundID).Return(openRefund(), nil)
		f.tx.Store.RefundRepo.On("Decide", ctx, mock.MatchedBy(func(r *model.Refund) bool {
			return r.Status == model.RefundProcessed && r.ProviderRefundID == "re_1" && r.DecidedBy == adminClaims.Subject
		})).Return(nil)
		f.tx.Store.RegistrationRepo.On("UpdateStatus", ctx, registrationID, model.RegistrationRefunded).Return(nil)
		f.events.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
			return e.Type == events.RefundProcessed
		})).Return(nil)
		f.notifier.On("Enqueue", ctx, mock.MatchedBy(func(j notify.Job) bool {
			return j.Kind == notify.KindRefundProcessed &&
				j.To == memberClaims.Email &&
				j.Data["amount"] == "12.50" &&
				j.Data["currency"] == "EUR" &&
				j.Data["workshop"] == "Intro to soldering"
		})).Return(nil)
		svc := NewRefundService(f.deps(), gw, locker)

		got, err := svc.Approve(ctx, adminClaims, refundID, "ok")

		require.NoError(t, err)
		assert.Equal(t, model.RefundProcessed, got.Status)
		require.NotNil(t, got.DecidedAt)
		assert.Equal(t, testNow, *got.DecidedAt)
		f.assert(t)
		gw.AssertExpectations(t)

		lock, err := locker.Acquire(ctx, "refund:"+refundID, time.Second)
		require.NoError(t, err, "lock is released after approval")
		assert.NoError(t, lock.Release(ctx))
	})

	t.Run("provider failure is recorded", func(t *testing.T) {
		f := newFixture()
		gw := new(payMocks.MockGateway)
		expectReads(f, openRefund())
		gw.On("Refund", ctx, mock.Anything).Return("", errors.New("charge already refunded"))
		f.tx.On("InScope", ctx, adminClaims).Return(nil)
		f.tx.Store.RefundRepo.On("FindByIDForUpdate", ctx, refundID).Return(openRefund(), nil)
		f.tx.Store.RefundRepo.On("Decide", ctx, mock.MatchedBy(func(r *model.Refund) bool {
			return r.Status == model.RefundFailed && r.DecisionNote == "retry; charge already refunded"
		})).Return(nil)
		svc := NewRefundService(f.deps(), gw, nil)

		_, err := svc.Approve(ctx, adminClaims, refundID, "retry")

		assert.ErrorIs(t, err, ErrPaymentProvider)
		f.assert(t)
	})

	t.Run("payments not configured", func(t *testing.T) {
		f := newFixture()
		expectReads(f, openRefund())
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.Approve(ctx, adminClaims, refundID, "")

		assert.ErrorIs(t, err, ErrUnavailable)
		f.assert(t)
	})

	t.Run("already decided", func(t *testing.T) {
		f := newFixture()
		done := openRefund()
		done.Status = model.RefundRejected
		expectReads(f, done)
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.Approve(ctx, adminClaims, refundID, "")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.assert(t)
	})

	t.Run("decided while the provider was called", func(t *testing.T) {
		f := newFixture()
		gw := new(payMocks.MockGateway)
		expectReads(f, openRefund())
		gw.On("Refund", ctx, mock.Anything).Return("re_2", nil)
		raced := openRefund()
		raced.Status = model.RefundRejected
		f.tx.On("InScope", ctx, adminClaims).Return(nil)
		f.tx.Store.RefundRepo.On("FindByIDForUpdate", ctx, refundID).Return(raced, nil)
		svc := NewRefundService(f.deps(), gw, nil)

		_, err := svc.Approve(ctx, adminClaims, refundID, "")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		f.assert(t)
	})

	t.Run("concurrent approval is rejected", func(t *testing.T) {
		f := newFixture()
		locker := cache.NewLocalLocker()
		held, err := locker.Acquire(ctx, "refund:"+refundID, time.Minute)
		require.NoError(t, err)
		defer held.Release(ctx)
		svc := NewRefundService(f.deps(), nil, locker)

		_, err = svc.Approve(ctx, adminClaims, refundID, "")

		assert.ErrorIs(t, err, ErrConflict)
		f.assert(t)
	})

	t.Run("lock backend down", func(t *testing.T) {
		f := newFixture()
		locker := new(cacheMocks.MockLocker)
		locker.On("Acquire", ctx, "refund:"+refundID, refundLockTTL).Return(nil, errors.New("connection refused"))
		svc := NewRefundService(f.deps(), nil, locker)

		_, err := svc.Approve(ctx, adminClaims, refundID, "")

		assert.ErrorIs(t, err, ErrUnavailable)
		locker.AssertExpectations(t)
	})

	t.Run("staff cannot approve", func(t *testing.T) {
		f := newFixture()
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.Approve(ctx, staffClaims, refundID, "")

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestRefundService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected with a note", func(t *testing.T) {
		f := newFixture()
		f.tx.On("InScope", ctx, adminClaims).Return(nil)
		f.tx.Store.RefundRepo.On("FindByIDForUpdate", ctx, refundID).Return(openRefund(), nil)
		f.tx.Store.RefundRepo.On("Decide", ctx, mock.MatchedBy(func(r *model.Refund) bool {
			return r.Status == model.RefundRejected && r.DecisionNote == "attended the workshop"
		})).Return(nil)
		svc := NewRefundService(f.deps(), nil, nil)

		got, err := svc.Reject(ctx, adminClaims, refundID, "attended the workshop")

		require.NoError(t, err)
		assert.Equal(t, model.RefundRejected, got.Status)
		f.assert(t)
	})

	t.Run("note is required", func(t *testing.T) {
		f := newFixture()
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.Reject(ctx, adminClaims, refundID, "")

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing refund", func(t *testing.T) {
		f := newFixture()
		f.tx.On("InScope", ctx, adminClaims).Return(nil)
		f.tx.Store.RefundRepo.On("FindByIDForUpdate", ctx, refundID).Return(nil, repository.ErrNotFound)
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.Reject(ctx, adminClaims, refundID, "no")

		assert.ErrorIs(t, err, ErrNotFound)
		f.assert(t)
	})
}

func TestRefundService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by status", func(t *testing.T) {
		f := newFixture()
		f.tx.On("InReadScope", ctx, memberClaims).Return(nil)
		f.tx.Store.RefundRepo.On("List", ctx, model.RefundRequested).Return([]model.Refund{*openRefund()}, nil)
		svc := NewRefundService(f.deps(), nil, nil)

		got, err := svc.List(ctx, memberClaims, "requested")

		require.NoError(t, err)
		assert.Len(t, got, 1)
		f.assert(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture()
		svc := NewRefundService(f.deps(), nil, nil)

		_, err := svc.List(ctx, memberClaims, "paid")

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.50", formatAmount(1250))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "-3.00", formatAmount(-300))
}
