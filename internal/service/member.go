package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"clubapi/internal/auth"
	"clubapi/internal/cache"
	"clubapi/internal/model"
	"clubapi/internal/repository"
)

type ChangeRoleInput struct {
	Role string `json:"role" validate:"required,role"`
}

// MemberService defines membership and navigation use cases.
type MemberService interface {
	List(ctx context.Context, claims model.Claims, limit, offset int) (*ListResult[model.Member], error)
	// Me returns the caller's membership; callers without a user_roles row are guests.
	Me(ctx context.Context, claims model.Claims) (*model.Member, error)
	ChangeRole(ctx context.Context, claims model.Claims, userID, role string) (*model.Member, error)
	Navigation(claims model.Claims) []model.NavItem
}

type memberService struct {
	Deps
	roles cache.RoleCache
}

// NewMemberService constructs a new MemberService.
func NewMemberService(deps Deps, roles cache.RoleCache) MemberService {
	return &memberService{Deps: deps.withDefaults(), roles: roles}
}

func (s *memberService) List(ctx context.Context, claims model.Claims, limit, offset int) (*ListResult[model.Member], error) {
	if err := requireRole(claims, model.RoleStaff); err != nil {
		return nil, err
	}
	var res *repository.PageResult[model.Member]
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		res, err = st.Members().List(ctx, normalizePage(limit, offset))
		return err
	})
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *memberService) Me(ctx context.Context, claims model.Claims) (*model.Member, error) {
	if !claims.Authenticated() {
		return nil, ErrUnauthenticated
	}
	var m *model.Member
	err := s.Tx.InReadScope(ctx, claims, func(st repository.Store) error {
		var err error
		m, err = st.Members().FindByUserID(ctx, claims.Subject)
		return err
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &model.Member{UserID: claims.Subject, Email: claims.Email, Role: model.RoleGuest}, nil
	case err != nil:
		return nil, err
	}
	return m, nil
}

func (s *memberService) ChangeRole(ctx context.Context, claims model.Claims, userID, role string) (*model.Member, error) {
	if err := requireRole(claims, model.RoleAdmin); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if userID == claims.Subject {
		return nil, fmt.Errorf("%w: you cannot change your own role", ErrForbidden)
	}
	r, ok := model.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	var m *model.Member
	err := s.Tx.InScope(ctx, claims, func(st repository.Store) error {
		if err := st.Members().UpdateRole(ctx, userID, r); err != nil {
			return err
		}
		var err error
		m, err = st.Members().FindByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	forgetRole(ctx, s.roles, userID)
	zerolog.Ctx(ctx).Info().Str("user_id", userID).Str("role", string(r)).Str("by", claims.Subject).Msg("member role changed")
	return m, nil
}

func (s *memberService) Navigation(claims model.Claims) []model.NavItem {
	return model.NavigationFor(claims.Role)
}

// RoleResolver looks the club role of a verified identity up in user_roles.
// Tokens never carry the role.
type RoleResolver struct {
	tx    repository.Transactor
	cache cache.RoleCache
}

var _ auth.RoleResolver = (*RoleResolver)(nil)

func NewRoleResolver(tx repository.Transactor, roles cache.RoleCache) *RoleResolver {
	return &RoleResolver{tx: tx, cache: roles}
}

func (r *RoleResolver) Resolve(ctx context.Context, id auth.Identity) (model.Role, error) {
	log := zerolog.Ctx(ctx)
	if r.cache != nil {
		role, ok, err := r.cache.Get(ctx, id.Subject)
		if err != nil {
			log.Warn().Err(err).Msg("role cache get")
		} else if ok {
			return role, nil
		}
	}

	role := model.RoleGuest
	claims := model.Claims{Subject: id.Subject, Email: id.Email, Role: model.RoleGuest}
	err := r.tx.InReadScope(ctx, claims, func(st repository.Store) error {
		m, err := st.Members().FindByUserID(ctx, id.Subject)
		if err != nil {
			return err
		}
		role = m.Role
		return nil
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("resolve role: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, id.Subject, role); err != nil {
			log.Warn().Err(err).Msg("role cache set")
		}
	}
	return role, nil
}

func forgetRole(ctx context.Context, roles cache.RoleCache, userID string) {
	if roles == nil {
		return
	}
	if err := roles.Delete(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("drop cached role")
	}
}
