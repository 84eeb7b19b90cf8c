// Package events publishes domain events for other services to consume.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	WorkshopPublished     = "workshop.published"
	WorkshopCancelled     = "workshop.cancelled"
	WorkshopFinished      = "workshop.finished"
	RegistrationCreated   = "registration.created"
	RegistrationCancelled = "registration.cancelled"
	RefundProcessed       = "refund.processed"
	InvitationCreated     = "invitation.created"
	InvitationAccepted    = "invitation.accepted"
)

// Event is the envelope written to the broker.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType, aggregateID, actorID string, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
