// Package payment talks to the card payment provider.
package payment

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("payment provider not configured")
	ErrSignature     = errors.New("invalid webhook signature")
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeIgnored   Outcome = "ignored"
)

type IntentRequest struct {
	AmountCents    int64
	Currency       string
	RegistrationID string
	WorkshopID     string
	UserID         string
	Email          string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type RefundRequest struct {
	RefundID        string
	PaymentIntentID string
	AmountCents     int64
}

// WebhookEvent is the part of a provider event the registration flow cares about.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	Outcome         Outcome
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error)
	CancelPaymentIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, req RefundRequest) (string, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}

// Disabled rejects every call. It stands in when no secret key is configured so
// free workshops keep working.
type Disabled struct{}

func (Disabled) CreatePaymentIntent(context.Context, IntentRequest) (Intent, error) {
	return Intent{}, ErrNotConfigured
}

func (Disabled) CancelPaymentIntent(context.Context, string) error {
	return ErrNotConfigured
}

func (Disabled) Refund(context.Context, RefundRequest) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) ParseWebhook([]byte, string) (WebhookEvent, error) {
	return WebhookEvent{}, ErrNotConfigured
}
