package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type refundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

type Stripe struct {
	intents       intentAPI
	refunds       refundAPI
	webhookSecret string
}

var _ Gateway = (*Stripe)(nil)

func NewStripe(secretKey, webhookSecret string) *Stripe {
	sc := client.New(secretKey, nil)
	return &Stripe{intents: sc.PaymentIntents, refunds: sc.Refunds, webhookSecret: webhookSecret}
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		ReceiptEmail:       stripe.String(req.Email),
		PaymentMethodTypes: []*string{stripe.String("card")},
		Metadata: map[string]string{
			"registration_id": req.RegistrationID,
			"workshop_id":     req.WorkshopID,
			"user_id":         req.UserID,
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("registration-" + req.RegistrationID)

	pi, err := s.intents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// CancelPaymentIntent voids an intent that was never handed to the payer.
func (s *Stripe) CancelPaymentIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx
	if _, err := s.intents.Cancel(intentID, params); err != nil {
		return fmt.Errorf("cancel payment intent: %w", err)
	}
	return nil
}

func (s *Stripe) Refund(ctx context.Context, req RefundRequest) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentIntentID),
		Amount:        stripe.Int64(req.AmountCents),
		Metadata:      map[string]string{"refund_id": req.RefundID},
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + req.RefundID)

	r, err := s.refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("create refund: %w", err)
	}
	return r.ID, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	if s.webhookSecret == "" {
		return WebhookEvent{}, ErrNotConfigured
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	out := WebhookEvent{ID: evt.ID, Type: string(evt.Type), Outcome: OutcomeIgnored}
	switch evt.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		out.Outcome = OutcomeSucceeded
	case stripe.EventTypePaymentIntentPaymentFailed, stripe.EventTypePaymentIntentCanceled:
		out.Outcome = OutcomeFailed
	default:
		return out, nil
	}

	if evt.Data == nil {
		return WebhookEvent{}, errors.New("payment intent event without data")
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode payment intent: %w", err)
	}
	out.PaymentIntentID = pi.ID
	return out, nil
}
