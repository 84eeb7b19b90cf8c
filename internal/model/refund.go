package model

import "time"

type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundProcessed RefundStatus = "processed"
	RefundRejected  RefundStatus = "rejected"
	RefundFailed    RefundStatus = "failed"
)

// Open reports whether the refund still awaits a decision.
func (s RefundStatus) Open() bool {
	return s == RefundRequested
}

type Refund struct {
	ID               string       `json:"id"`
	RegistrationID   string       `json:"registration_id"`
	UserID           string       `json:"user_id"`
	AmountCents      int64        `json:"amount_cents"`
	Currency         string       `json:"currency"`
	Reason           string       `json:"reason"`
	Status           RefundStatus `json:"status"`
	ProviderRefundID string       `json:"provider_refund_id,omitempty"`
	DecidedBy        string       `json:"decided_by,omitempty"`
	DecisionNote     string       `json:"decision_note,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	DecidedAt        *time.Time   `json:"decided_at,omitempty"`
}

// RefundFor builds a refund request covering the full amount of reg.
func RefundFor(reg Registration, reason string, now time.Time) Refund {
	return Refund{
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		AmountCents:    reg.AmountCents,
		Currency:       reg.Currency,
		Reason:         reason,
		Status:         RefundRequested,
		CreatedAt:      now,
	}
}
