package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkshopStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from WorkshopStatus
		to   WorkshopStatus
		want bool
	}{
		{WorkshopPlanned, WorkshopPublished, true},
		{WorkshopPlanned, WorkshopCancelled, true},
		{WorkshopPlanned, WorkshopFinished, false},
		{WorkshopPublished, WorkshopFinished, true},
		{WorkshopPublished, WorkshopCancelled, true},
		{WorkshopPublished, WorkshopPlanned, false},
		{WorkshopFinished, WorkshopCancelled, false},
		{WorkshopCancelled, WorkshopPublished, false},
		{WorkshopStatus("bogus"), WorkshopPublished, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestWorkshopStatus_Terminal(t *testing.T) {
	assert.False(t, WorkshopPlanned.Terminal())
	assert.False(t, WorkshopPublished.Terminal())
	assert.True(t, WorkshopFinished.Terminal())
	assert.True(t, WorkshopCancelled.Terminal())
}

func TestWorkshopPatch_Apply(t *testing.T) {
	w := Workshop{Title: "old", Capacity: 5, Location: "hall"}
	title := "new"
	capacity := 12

	WorkshopPatch{Title: &title, Capacity: &capacity}.Apply(&w)

	assert.Equal(t, "new", w.Title)
	assert.Equal(t, 12, w.Capacity)
	assert.Equal(t, "hall", w.Location)
}

func TestWorkshop_Started(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, Workshop{StartsAt: now}.Started(now))
	assert.False(t, Workshop{StartsAt: now.Add(time.Minute)}.Started(now))
}

func TestInvitation_Effective(t *testing.T) {
	now := time.Now()
	inv := Invitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Second)}
	assert.Equal(t, InvitationExpired, inv.Effective(now))

	inv.ExpiresAt = now.Add(time.Hour)
	assert.Equal(t, InvitationPending, inv.Effective(now))

	inv.Status = InvitationAccepted
	inv.ExpiresAt = now.Add(-time.Hour)
	assert.Equal(t, InvitationAccepted, inv.Effective(now))
}
