package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubapi/internal/auth"
	cacheMocks "clubapi/internal/cache/mocks"
	"clubapi/internal/model"
	"clubapi/internal/repository"
	repoMocks "clubapi/internal/repository/mocks"
)

func TestMemberService_Me(t *testing.T) {
	ctx := context.Background()

	t.Run("member", func(t *testing.T) {
		f := newFixture()
		f.tx.On("InReadScope", ctx, memberClaims).Return(nil)
		f.tx.Store.MemberRepo.On("FindByUserID", ctx, memberClaims.Subject).
			Return(&model.Member{UserID: memberClaims.Subject, Role: model.RoleMember}, nil)
		svc := NewMemberService(f.deps(), nil)

		m, err := svc.Me(ctx, memberClaims)

		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, m.Role)
		f.assert(t)
	})

	t.Run("no role row is a guest", func(t *testing.T) {
		f := newFixture()
		f.tx.On("InReadScope", ctx, guestClaims).Return(nil)
		f.tx.Store.MemberRepo.On("FindByUserID", ctx, guestClaims.Subject).Return(nil, repository.ErrNotFound)
		svc := NewMemberService(f.deps(), nil)

		m, err := svc.Me(ctx, guestClaims)

		require.NoError(t, err)
		assert.Equal(t, model.RoleGuest, m.Role)
		assert.Equal(t, guestClaims.Email, m.Email)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture()
		svc := NewMemberService(f.deps(), nil)

		_, err := svc.Me(ctx, model.Claims{})

		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestMemberService_ChangeRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		claims  model.Claims
		userID  string
		role    string
		wantErr error
	}{
		{name: "promote", claims: adminClaims, userID: "member-1", role: "staff"},
		{name: "own role", claims: adminClaims, userID: adminClaims.Subject, role: "member", wantErr: ErrForbidden},
		{name: "unknown role", claims: adminClaims, userID: "member-1", role: "owner", wantErr: ErrInvalidInput},
		{name: "missing user", claims: adminClaims, userID: "", role: "staff", wantErr: ErrInvalidInput},
		{name: "staff cannot change roles", claims: staffClaims, userID: "member-1", role: "staff", wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			roles := new(cacheMocks.MockRoleCache)
			if tt.wantErr == nil {
				f.tx.On("InScope", ctx, tt.claims).Return(nil)
				f.tx.Store.MemberRepo.On("UpdateRole", ctx, tt.userID, model.Role(tt.role)).Return(nil)
				f.tx.Store.MemberRepo.On("FindByUserID", ctx, tt.userID).
					Return(&model.Member{UserID: tt.userID, Role: model.Role(tt.role)}, nil)
				roles.On("Delete", ctx, tt.userID).Return(nil)
			}
			svc := NewMemberService(f.deps(), roles)

			m, err := svc.ChangeRole(ctx, tt.claims, tt.userID, tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.Role(tt.role), m.Role)
			}
			f.assert(t)
			roles.AssertExpectations(t)
		})
	}

	t.Run("member without a role row", func(t *testing.T) {
		f := newFixture()
		f.tx.On("InScope", ctx, adminClaims).Return(nil)
		f.tx.Store.MemberRepo.On("UpdateRole", ctx, "ghost", model.RoleStaff).Return(repository.ErrNotFound)
		svc := NewMemberService(f.deps(), nil)

		_, err := svc.ChangeRole(ctx, adminClaims, "ghost", "staff")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemberService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.tx.On("InReadScope", ctx, staffClaims).Return(nil)
	f.tx.Store.MemberRepo.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 40}).
		Return(&repository.PageResult[model.Member]{Items: []model.Member{{UserID: "u"}}, Total: 41}, nil)
	svc := NewMemberService(f.deps(), nil)

	got, err := svc.List(ctx, staffClaims, 0, 40)

	require.NoError(t, err)
	assert.Equal(t, 41, got.Total)
	assert.Len(t, got.Items, 1)
	f.assert(t)
}

func TestMemberService_Navigation(t *testing.T) {
	svc := NewMemberService(newFixture().deps(), nil)

	keys := func(items []model.NavItem) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Key)
		}
		return out
	}

	assert.Equal(t, []string{"workshops"}, keys(svc.Navigation(guestClaims)))
	assert.Contains(t, keys(svc.Navigation(memberClaims)), "inventory")
	assert.NotContains(t, keys(svc.Navigation(memberClaims)), "analytics")
	assert.Contains(t, keys(svc.Navigation(staffClaims)), "analytics")
	assert.NotContains(t, keys(svc.Navigation(staffClaims)), "invitations")
	assert.Contains(t, keys(svc.Navigation(adminClaims)), "invitations")
}

func TestRoleResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	id := auth.Identity{Subject: "user-5", Email: "five@club.test"}
	lookupClaims := model.Claims{Subject: "user-5", Email: "five@club.test", Role: model.RoleGuest}

	t.Run("cache hit", func(t *testing.T) {
		tx := repoMocks.NewMockTransactor()
		roles := new(cacheMocks.MockRoleCache)
		roles.On("Get", ctx, "user-5").Return(model.RoleStaff, true, nil)

		role, err := NewRoleResolver(tx, roles).Resolve(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, model.RoleStaff, role)
		tx.AssertNotCalled(t, "InReadScope", mock.Anything, mock.Anything)
	})

	t.Run("miss reads user_roles and caches", func(t *testing.T) {
		tx := repoMocks.NewMockTransactor()
		roles := new(cacheMocks.MockRoleCache)
		roles.On("Get", ctx, "user-5").Return(model.Role(""), false, nil)
		tx.On("InReadScope", ctx, lookupClaims).Return(nil)
		tx.Store.MemberRepo.On("FindByUserID", ctx, "user-5").Return(&model.Member{UserID: "user-5", Role: model.RoleMember}, nil)
		roles.On("Set", ctx, "user-5", model.RoleMember).Return(nil)

		role, err := NewRoleResolver(tx, roles).Resolve(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, role)
		tx.AssertAll(t)
		roles.AssertExpectations(t)
	})

	t.Run("no row is a guest", func(t *testing.T) {
		tx := repoMocks.NewMockTransactor()
		tx.On("InReadScope", ctx, lookupClaims).Return(nil)
		tx.Store.MemberRepo.On("FindByUserID", ctx, "user-5").Return(nil, repository.ErrNotFound)

		role, err := NewRoleResolver(tx, nil).Resolve(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, model.RoleGuest, role)
	})

	t.Run("cache errors fall through to the database", func(t *testing.T) {
		tx := repoMocks.NewMockTransactor()
		roles := new(cacheMocks.MockRoleCache)
		roles.On("Get", ctx, "user-5").Return(model.Role(""), false, errors.New("redis down"))
		tx.On("InReadScope", ctx, lookupClaims).Return(nil)
		tx.Store.MemberRepo.On("FindByUserID", ctx, "user-5").Return(&model.Member{Role: model.RoleAdmin}, nil)
		roles.On("Set", ctx, "user-5", model.RoleAdmin).Return(errors.New("redis down"))

		role, err := NewRoleResolver(tx, roles).Resolve(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, role)
	})

	t.Run("database failure", func(t *testing.T) {
		tx := repoMocks.NewMockTransactor()
		tx.On("InReadScope", ctx, lookupClaims).Return(errors.New("too many connections"))

		_, err := NewRoleResolver(tx, nil).Resolve(ctx, id)

		assert.Error(t, err)
	})
}
