package model

import "time"

type WorkshopStatus string

const (
	WorkshopPlanned   WorkshopStatus = "planned"
	WorkshopPublished WorkshopStatus = "published"
	WorkshopFinished  WorkshopStatus = "finished"
	WorkshopCancelled WorkshopStatus = "cancelled"
)

// workshopTransitions is the single source of truth for the workshop lifecycle.
var workshopTransitions = map[WorkshopStatus][]WorkshopStatus{
	WorkshopPlanned:   {WorkshopPublished, WorkshopCancelled},
	WorkshopPublished: {WorkshopFinished, WorkshopCancelled},
}

// Valid reports whether s is a known workshop status.
func (s WorkshopStatus) Valid() bool {
	switch s {
	case WorkshopPlanned, WorkshopPublished, WorkshopFinished, WorkshopCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a workshop in status s may move to next.
func (s WorkshopStatus) CanTransitionTo(next WorkshopStatus) bool {
	for _, allowed := range workshopTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether workshop details may still change.
func (s WorkshopStatus) Editable() bool {
	return s == WorkshopPlanned || s == WorkshopPublished
}

// Terminal reports whether no further transition is possible.
func (s WorkshopStatus) Terminal() bool {
	return len(workshopTransitions[s]) == 0
}

type Workshop struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Location     string         `json:"location"`
	StartsAt     time.Time      `json:"starts_at"`
	EndsAt       time.Time      `json:"ends_at"`
	Capacity     int            `json:"capacity"`
	PriceCents   int64          `json:"price_cents"`
	Currency     string         `json:"currency"`
	Status       WorkshopStatus `json:"status"`
	CancelReason string         `json:"cancel_reason,omitempty"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	PublishedAt  *time.Time     `json:"published_at,omitempty"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	CancelledAt  *time.Time     `json:"cancelled_at,omitempty"`
}

// Paid reports whether registrations for the workshop require payment.
func (w Workshop) Paid() bool {
	return w.PriceCents > 0
}

// Started reports whether the workshop start time is at or before now.
func (w Workshop) Started(now time.Time) bool {
	return !w.StartsAt.After(now)
}

// WorkshopPatch carries optional field updates; nil fields are left unchanged.
type WorkshopPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	PriceCents  *int64     `json:"price_cents,omitempty"`
}

// Apply copies the set fields onto w.
func (p WorkshopPatch) Apply(w *Workshop) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.Location != nil {
		w.Location = *p.Location
	}
	if p.StartsAt != nil {
		w.StartsAt = *p.StartsAt
	}
	if p.EndsAt != nil {
		w.EndsAt = *p.EndsAt
	}
	if p.Capacity != nil {
		w.Capacity = *p.Capacity
	}
	if p.PriceCents != nil {
		w.PriceCents = *p.PriceCents
	}
}

// InterestSummary is the interest state of one workshop as seen by the caller.
type InterestSummary struct {
	WorkshopID string `json:"workshop_id"`
	Count      int    `json:"count"`
	Interested bool   `json:"interested"`
}

// WorkshopDraft is a generated title and description suggestion.
type WorkshopDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
