package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clubapi/internal/events"
	"clubapi/internal/generator"
	"clubapi/internal/model"
	"clubapi/internal/notify"
	"clubapi/internal/repository"
	"clubapi/internal/validator"
)

const (
	defaultCurrency      = "eur"
	workshopCancelReason = "workshop cancelled"
	timeLayout           = "Mon, 02 Jan 2006 15:04 MST"
)

type CreateWorkshopInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Location    string    `json:"location" validate:"required,max=200"`
	StartsAt    time.Time `json:"starts_at" validate:"required,futuretime"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    int       `json:"capacity" validate:"gte=0,lte=10000"`
	PriceCents  int64     `json:"price_cents" validate:"gte=0"`
	Currency    string    `json:"currency" validate:"omitempty,len=3"`
}

// workshopFields re-validates a workshop after a patch was applied.
type workshopFields struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Location    string    `json:"location" validate:"required,max=200"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    int       `json:"capacity" validate:"gte=0,lte=10000"`
	PriceCents  int64     `json:"price_cents" validate:"gte=0"`
}

type GenerateWorkshopInput struct {
	Topic           string `json:"topic" validate:"required,max=200"`
	Audience        string `json:"audience" validate:"max=200"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0,lte=1440"`
}

// CancelResult reports what a workshop cancellation touched.
type CancelResult struct {
	Workshop               *model.Workshop `json:"workshop"`
	CancelledRegistrations int             `json:"cancelled_registrations"`
	RefundsRequested       int             `json:"refunds_requested"`
}

type FinishResult struct {
	Workshop *model.Workshop `json:"workshop"`
	NoShows  int64           `json:"no_shows"`
}

// WorkshopService defines the workshop use cases.
type WorkshopService interface {
	// List returns workshops visible to the caller, newest start first.
	List(ctx context.Context, claims model.Claims, status string, limit, offset int) (*ListResult[model.Workshop], error)
	Get(ctx context.Context, claims model.Claims, id string) (*model.Workshop, error)
	Create(ctx context.Context, claims model.Claims, in CreateWorkshopInput) (*model.Workshop, error)
	// Update applies patch to a planned or published workshop.
	Update(ctx context.Context, claims model.Claims, id string, patch model.WorkshopPatch) (*model.Workshop, error)
	// Delete removes a workshop that was never published.
	Delete(ctx context.Context, claims model.Claims, id string) error

	Publish(ctx context.Context, claims model.Claims, id string) (*model.Workshop, error)
	// Cancel cancels the workshop, its active registrations, and requests refunds for paid seats.
	Cancel(ctx context.Context, claims model.Claims, id, reason string) (*CancelResult, error)
	// Finish closes a started workshop and marks unrecorded attendance as no-show.
	Finish(ctx context.Context, claims model.Claims, id string) (*FinishResult, error)

	AddInterest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error)
	RemoveInterest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error)
	Interest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error)

	// Generate drafts a title and description. Nothing is stored.
	Generate(ctx context.Context, claims model.Claims, in GenerateWorkshopInput) (model.WorkshopDraft, error)
}

type workshopService struct {
	Deps
	gen generator.Generator
}

// NewWorkshopService constructs a new WorkshopService.
func NewWorkshopService(deps Deps, gen generator.Generator) WorkshopService {
	return &workshopService{Deps: deps.withDefaults(), gen: gen}
}

func (s *workshopService) List(ctx context.Context, claims model.Claims, status string, limit, offset int) (*ListResult[model.Workshop], error) {
	filter := model.WorkshopStatus(status)
	if filter != "" && !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	var res *repository.PageResult[model.Workshop]
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		res, err = st.Workshops().List(ctx, filter, normalizePage(limit, offset))
		return err
	})
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *workshopService) Get(ctx context.Context, claims model.Claims, id string) (*model.Workshop, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var w *model.Workshop
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		w, err = st.Workshops().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *workshopService) Create(ctx context.Context, claims model.Claims, in CreateWorkshopInput) (*model.Workshop, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	now := s.now()
	w := &model.Workshop{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    strings.TrimSpace(in.Location),
		StartsAt:    in.StartsAt.UTC(),
		EndsAt:      in.EndsAt.UTC(),
		Capacity:    in.Capacity,
		PriceCents:  in.PriceCents,
		Currency:    currencyOrDefault(in.Currency),
		Status:      model.WorkshopPlanned,
		CreatedBy:   claims.Subject,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created *model.Workshop
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		created, err = st.Workshops().Create(ctx, w)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create workshop: %w", err)
	}
	return created, nil
}

func (s *workshopService) Update(ctx context.Context, claims model.Claims, id string, patch model.WorkshopPatch) (*model.Workshop, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	now := s.now()
	if patch.StartsAt != nil && !patch.StartsAt.After(now) {
		return nil, &validator.Error{Fields: map[string]string{"starts_at": "must be in the future"}}
	}

	var updated *model.Workshop
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		if patch.Capacity != nil {
			if err := st.Registrations().LockSeats(ctx, id); err != nil {
				return err
			}
		}
		w, err := st.Workshops().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !w.Status.Editable() {
			return fmt.Errorf("%w: %s workshop cannot be edited", ErrInvalidTransition, w.Status)
		}
		if patch.PriceCents != nil && *patch.PriceCents != w.PriceCents && w.Status != model.WorkshopPlanned {
			return fmt.Errorf("%w: price is fixed once published", ErrInvalidTransition)
		}
		patch.Apply(w)
		if err := validator.Validate(ctx, workshopFields{
			Title:       w.Title,
			Description: w.Description,
			Location:    w.Location,
			StartsAt:    w.StartsAt,
			EndsAt:      w.EndsAt,
			Capacity:    w.Capacity,
			PriceCents:  w.PriceCents,
		}); err != nil {
			return err
		}
		if patch.Capacity != nil {
			active, err := st.Registrations().CountActive(ctx, id)
			if err != nil {
				return err
			}
			if w.Capacity < active {
				return fmt.Errorf("%w: capacity %d is below %d active registrations", ErrConflict, w.Capacity, active)
			}
		}
		w.UpdatedAt = now
		updated, err = st.Workshops().Update(ctx, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *workshopService) Delete(ctx context.Context, claims model.Claims, id string) error {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	return s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		w, err := st.Workshops().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if w.Status != model.WorkshopPlanned {
			return fmt.Errorf("%w: only planned workshops can be deleted", ErrInvalidTransition)
		}
		return st.Workshops().Delete(ctx, id)
	})
}

func (s *workshopService) Publish(ctx context.Context, claims model.Claims, id string) (*model.Workshop, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	now := s.now()

	var published *model.Workshop
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		w, err := st.Workshops().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := transition(w, model.WorkshopPublished); err != nil {
			return err
		}
		if w.Started(now) {
			return fmt.Errorf("%w: start time has passed", ErrInvalidTransition)
		}
		if w.Capacity <= 0 {
			return fmt.Errorf("%w: capacity must be positive", ErrInvalidTransition)
		}
		w.Status = model.WorkshopPublished
		w.PublishedAt = &now
		w.UpdatedAt = now
		published, err = st.Workshops().Update(ctx, w)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.WorkshopTransition(string(model.WorkshopPlanned), string(model.WorkshopPublished))
	s.publish(ctx, events.New(events.WorkshopPublished, published.ID, claims.Subject, published))
	return published, nil
}

func (s *workshopService) Cancel(ctx context.Context, claims model.Claims, id, reason string) (*CancelResult, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &validator.Error{Fields: map[string]string{"reason": validator.ErrFieldRequired}}
	}
	now := s.now()

	var (
		from     model.WorkshopStatus
		res      = &CancelResult{}
		affected []model.Registration
	)
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		if err := st.Registrations().LockSeats(ctx, id); err != nil {
			return err
		}
		w, err := st.Workshops().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = w.Status
		if err := transition(w, model.WorkshopCancelled); err != nil {
			return err
		}

		regs, err := st.Registrations().ListByWorkshop(ctx, id, model.ActiveRegistrationStatuses)
		if err != nil {
			return err
		}
		for _, reg := range regs {
			if err := st.Registrations().UpdateStatus(ctx, reg.ID, model.RegistrationCancelled); err != nil {
				return fmt.Errorf("cancel registration %s: %w", reg.ID, err)
			}
			if reg.Status == model.RegistrationConfirmed && reg.Paid() {
				refund := model.RefundFor(reg, workshopCancelReason, now)
				refund.ID = uuid.NewString()
				if _, err := st.Refunds().Create(ctx, &refund); err != nil {
					return fmt.Errorf("request refund for %s: %w", reg.ID, err)
				}
				res.RefundsRequested++
			}
		}
		res.CancelledRegistrations = len(regs)
		affected = regs

		w.Status = model.WorkshopCancelled
		w.CancelReason = reason
		w.CancelledAt = &now
		w.UpdatedAt = now
		res.Workshop, err = st.Workshops().Update(ctx, w)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.WorkshopTransition(string(from), string(model.WorkshopCancelled))
	s.publish(ctx, events.New(events.WorkshopCancelled, id, claims.Subject, map[string]any{
		"reason":                  reason,
		"cancelled_registrations": res.CancelledRegistrations,
		"refunds_requested":       res.RefundsRequested,
	}))
	for _, reg := range affected {
		s.enqueue(ctx, notify.Job{
			Kind: notify.KindWorkshopCancelled,
			To:   reg.Email,
			Data: cancellationData(res.Workshop, reason, reg),
		})
	}
	zerolog.Ctx(ctx).Info().
		Str("workshop_id", id).
		Int("cancelled_registrations", res.CancelledRegistrations).
		Int("refunds_requested", res.RefundsRequested).
		Msg("workshop cancelled")
	return res, nil
}

func (s *workshopService) Finish(ctx context.Context, claims model.Claims, id string) (*FinishResult, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	now := s.now()

	res := &FinishResult{}
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		if err := st.Registrations().LockSeats(ctx, id); err != nil {
			return err
		}
		w, err := st.Workshops().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := transition(w, model.WorkshopFinished); err != nil {
			return err
		}
		if !w.Started(now) {
			return fmt.Errorf("%w: workshop has not started yet", ErrInvalidTransition)
		}
		res.NoShows, err = st.Registrations().MarkNoShows(ctx, id)
		if err != nil {
			return err
		}
		w.Status = model.WorkshopFinished
		w.FinishedAt = &now
		w.UpdatedAt = now
		res.Workshop, err = st.Workshops().Update(ctx, w)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.WorkshopTransition(string(model.WorkshopPublished), string(model.WorkshopFinished))
	s.publish(ctx, events.New(events.WorkshopFinished, id, claims.Subject, map[string]any{"no_shows": res.NoShows}))
	return res, nil
}

func (s *workshopService) AddInterest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error) {
	return s.changeInterest(ctx, claims, id, func(st repository.Store) error {
		w, err := st.Workshops().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if w.Status != model.WorkshopPlanned && w.Status != model.WorkshopPublished {
			return fmt.Errorf("%w: cannot register interest in a %s workshop", ErrInvalidTransition, w.Status)
		}
		return st.Interests().Add(ctx, id, claims.Subject)
	})
}

func (s *workshopService) RemoveInterest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error) {
	return s.changeInterest(ctx, claims, id, func(st repository.Store) error {
		if _, err := st.Workshops().FindByID(ctx, id); err != nil {
			return err
		}
		err := st.Interests().Remove(ctx, id, claims.Subject)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})
}

func (s *workshopService) changeInterest(ctx context.Context, claims model.Claims, id string, change func(repository.Store) error) (*model.InterestSummary, error) {
	if err := requireRole(claims, model.RoleMember); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var sum *model.InterestSummary
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		if err := change(st); err != nil {
			return err
		}
		var err error
		sum, err = st.Interests().Summary(ctx, id, claims.Subject)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *workshopService) Interest(ctx context.Context, claims model.Claims, id string) (*model.InterestSummary, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var sum *model.InterestSummary
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		if _, err := st.Workshops().FindByID(ctx, id); err != nil {
			return err
		}
		var err error
		sum, err = st.Interests().Summary(ctx, id, claims.Subject)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *workshopService) Generate(ctx context.Context, claims model.Claims, in GenerateWorkshopInput) (model.WorkshopDraft, error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return model.WorkshopDraft{}, err
	}
	if err := validator.Validate(ctx, in); err != nil {
		return model.WorkshopDraft{}, err
	}
	if s.gen == nil {
		return model.WorkshopDraft{}, fmt.Errorf("%w: %v", ErrUnavailable, generator.ErrUnavailable)
	}
	draft, err := s.gen.Draft(ctx, generator.Prompt{
		Topic:           in.Topic,
		Audience:        in.Audience,
		DurationMinutes: in.DurationMinutes,
	})
	if err != nil {
		return model.WorkshopDraft{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return draft, nil
}

func transition(w *model.Workshop, next model.WorkshopStatus) error {
	if !w.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, next)
	}
	return nil
}

func cancellationData(w *model.Workshop, reason string, reg model.Registration) map[string]string {
	data := map[string]string{
		"workshop":  w.Title,
		"starts_at": w.StartsAt.Format(timeLayout),
		"reason":    reason,
	}
	if reg.Status == model.RegistrationConfirmed && reg.Paid() {
		data["refund"] = "yes"
	}
	return data
}

func currencyOrDefault(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return defaultCurrency
	}
	return c
}
