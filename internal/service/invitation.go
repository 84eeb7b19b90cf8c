package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clubapi/internal/cache"
	"clubapi/internal/events"
	"clubapi/internal/model"
	"clubapi/internal/notify"
	"clubapi/internal/repository"
	"clubapi/internal/validator"
)

const defaultInvitationTTL = 7 * 24 * time.Hour

type InviteInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Role  string `json:"role" validate:"required,role,ne=guest"`
	// TTLHours defaults to one week.
	TTLHours int `json:"ttl_hours" validate:"omitempty,gte=1,lte=720"`
}

type InviteResult struct {
	Invitation *model.Invitation `json:"invitation"`
	// Token is shown once; only its hash is stored.
	Token string `json:"token"`
}

// InvitationService defines the invitation use cases.
type InvitationService interface {
	Invite(ctx context.Context, claims model.Claims, in InviteInput) (*InviteResult, error)
	// List filters by effective status, so "expired" is a valid filter.
	List(ctx context.Context, claims model.Claims, status string) ([]model.Invitation, error)
	Revoke(ctx context.Context, claims model.Claims, id string) (*model.Invitation, error)
	// Accept grants the invited role to the caller when the invitation was sent to their email.
	Accept(ctx context.Context, claims model.Claims, token string) (*model.Member, error)
}

type invitationService struct {
	Deps
	roles cache.RoleCache
}

// NewInvitationService constructs a new InvitationService.
func NewInvitationService(deps Deps, roles cache.RoleCache) InvitationService {
	return &invitationService{Deps: deps.withDefaults(), roles: roles}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *invitationService) Invite(ctx context.Context, claims model.Claims, in InviteInput) (*InviteResult, error) {
	if err := requireRole(claims, model.RoleAdmin); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	ttl := defaultInvitationTTL
	if in.TTLHours > 0 {
		ttl = time.Duration(in.TTLHours) * time.Hour
	}
	now := s.now()
	email := strings.ToLower(in.Email)
	token := uuid.NewString() + uuid.NewString()

	inv := &model.Invitation{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      model.Role(in.Role),
		Status:    model.InvitationPending,
		InvitedBy: claims.Subject,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	var created *model.Invitation
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		pending, err := st.Invitations().List(ctx, model.InvitationPending)
		if err != nil {
			return err
		}
		for i := range pending {
			old := pending[i]
			if !strings.EqualFold(old.Email, email) {
				continue
			}
			if old.Effective(now) == model.InvitationPending {
				return fmt.Errorf("%w: %s already has a pending invitation", ErrConflict, email)
			}
			// Expired invitations still hold the one-pending-per-email slot.
			old.Status = model.InvitationRevoked
			if err := st.Invitations().UpdateStatus(ctx, &old); err != nil {
				return err
			}
		}
		created, err = st.Invitations().Create(ctx, inv, hashToken(token))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.InvitationCreated, created.ID, claims.Subject, map[string]any{
		"email": created.Email,
		"role":  created.Role,
	}))
	s.enqueue(ctx, notify.Job{
		Kind: notify.KindInvitation,
		To:   created.Email,
		Data: map[string]string{
			"role":       string(created.Role),
			"token":      token,
			"expires_at": created.ExpiresAt.Format(timeLayout),
		},
	})
	return &InviteResult{Invitation: created, Token: token}, nil
}

func (s *invitationService) List(ctx context.Context, claims model.Claims, status string) ([]model.Invitation, error) {
	if err := requireRole(claims, model.RoleAdmin); err != nil {
		return nil, err
	}
	filter := model.InvitationStatus(status)
	stored := filter
	switch filter {
	case "", model.InvitationAccepted, model.InvitationRevoked, model.InvitationPending:
	case model.InvitationExpired:
		stored = model.InvitationPending
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	var invs []model.Invitation
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		invs, err = st.Invitations().List(ctx, stored)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]model.Invitation, 0, len(invs))
	for _, inv := range invs {
		inv.Status = inv.Effective(now)
		if filter != "" && inv.Status != filter {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *invitationService) Revoke(ctx context.Context, claims model.Claims, id string) (*model.Invitation, error) {
	if err := requireRole(claims, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	now := s.now()

	var inv *model.Invitation
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		var err error
		inv, err = st.Invitations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != model.InvitationPending {
			return fmt.Errorf("%w: invitation is %s", ErrInvalidTransition, inv.Effective(now))
		}
		inv.Status = model.InvitationRevoked
		return st.Invitations().UpdateStatus(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invitationService) Accept(ctx context.Context, claims model.Claims, token string) (*model.Member, error) {
	if !claims.Authenticated() {
		return nil, ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: your account has no email address", ErrForbidden)
	}
	now := s.now()

	var (
		inv    *model.Invitation
		member *model.Member
	)
	// The invitee cannot read invitations through row-level security.
	err := s.Tx.InScope(ctx, model.ServiceClaims(), func(st repository.Store) error {
		var err error
		inv, err = st.Invitations().FindByTokenHashForUpdate(ctx, hashToken(token))
		if err != nil {
			return err
		}
		if status := inv.Effective(now); status != model.InvitationPending {
			return fmt.Errorf("%w: invitation is %s", ErrInvalidTransition, status)
		}
		if !strings.EqualFold(inv.Email, claims.Email) {
			return fmt.Errorf("%w: invitation was sent to another email address", ErrForbidden)
		}

		role := inv.Role
		current, err := st.Members().FindByUserID(ctx, claims.Subject)
		switch {
		case err == nil:
			if current.Role.AtLeast(role) {
				role = current.Role
			}
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		member, err = st.Members().Upsert(ctx, &model.Member{
			UserID:      claims.Subject,
			Email:       strings.ToLower(claims.Email),
			DisplayName: displayName(claims.Email),
			Role:        role,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		inv.Status = model.InvitationAccepted
		inv.AcceptedBy = claims.Subject
		inv.AcceptedAt = &now
		return st.Invitations().UpdateStatus(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	forgetRole(ctx, s.roles, claims.Subject)
	s.publish(ctx, events.New(events.InvitationAccepted, inv.ID, claims.Subject, map[string]any{
		"role": member.Role,
	}))
	zerolog.Ctx(ctx).Info().Str("user_id", claims.Subject).Str("role", string(member.Role)).Msg("invitation accepted")
	return member, nil
}

func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
