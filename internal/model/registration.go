package model

import "time"

type RegistrationStatus string

const (
	RegistrationPendingPayment RegistrationStatus = "pending_payment"
	RegistrationConfirmed      RegistrationStatus = "confirmed"
	RegistrationCancelled      RegistrationStatus = "cancelled"
	RegistrationRefunded       RegistrationStatus = "refunded"
)

// ActiveRegistrationStatuses count against workshop capacity.
var ActiveRegistrationStatuses = []RegistrationStatus{RegistrationPendingPayment, RegistrationConfirmed}

// Active reports whether the registration holds a seat.
func (s RegistrationStatus) Active() bool {
	return s == RegistrationPendingPayment || s == RegistrationConfirmed
}

type Attendance string

const (
	AttendanceUnknown  Attendance = "unknown"
	AttendanceAttended Attendance = "attended"
	AttendanceNoShow   Attendance = "no_show"
)

// Valid reports whether a marks an outcome staff may record.
func (a Attendance) Valid() bool {
	return a == AttendanceAttended || a == AttendanceNoShow
}

type Registration struct {
	ID              string             `json:"id"`
	WorkshopID      string             `json:"workshop_id"`
	UserID          string             `json:"user_id"`
	Email           string             `json:"email"`
	Status          RegistrationStatus `json:"status"`
	Attendance      Attendance         `json:"attendance"`
	AmountCents     int64              `json:"amount_cents"`
	Currency        string             `json:"currency"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty"`
	CheckedInAt     *time.Time         `json:"checked_in_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Paid reports whether money was collected for the registration.
func (r Registration) Paid() bool {
	return r.AmountCents > 0 && r.PaymentIntentID != ""
}
