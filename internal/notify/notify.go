// Package notify queues outbound emails and delivers them from a background worker.
package notify

import (
	"context"
)

type Kind string

const (
	KindInvitation            Kind = "invitation"
	KindWorkshopCancelled     Kind = "workshop_cancelled"
	KindRefundProcessed       Kind = "refund_processed"
	KindRegistrationConfirmed Kind = "registration_confirmed"
)

// Job is one email waiting in the queue. Data feeds the template of its Kind.
type Job struct {
	Kind Kind              `json:"kind"`
	To   string            `json:"to"`
	Data map[string]string `json:"data,omitempty"`
}

type Publisher interface {
	Enqueue(ctx context.Context, job Job) error
}

type Noop struct{}

func (Noop) Enqueue(context.Context, Job) error { return nil }
