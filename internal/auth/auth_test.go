package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubapi/internal/model"
)

func sign(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims() tokenClaims {
	return tokenClaims{
		Email: "ana@club.test",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "https://auth.club.test",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("secret", "https://auth.club.test", "authenticated")

	id, err := v.Verify(context.Background(), sign(t, "secret", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "u1", Email: "ana@club.test"}, id)
}

func TestHMACVerifier_Rejects(t *testing.T) {
	v := NewHMACVerifier("secret", "https://auth.club.test", "authenticated")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	noSub := validClaims()
	noSub.Subject = ""
	noExp := validClaims()
	noExp.ExpiresAt = nil

	tests := map[string]string{
		"wrong secret":   sign(t, "other", validClaims()),
		"expired":        sign(t, "secret", expired),
		"wrong audience": sign(t, "secret", wrongAud),
		"no subject":     sign(t, "secret", noSub),
		"no expiry":      sign(t, "secret", noExp),
		"garbage":        "abc.def.ghi",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

type fakeIDVerifier struct {
	tok *oidc.IDToken
	err error
}

func (f fakeIDVerifier) Verify(context.Context, string) (*oidc.IDToken, error) { return f.tok, f.err }

func TestOIDCVerifier(t *testing.T) {
	v := &OIDCVerifier{
		verifier: fakeIDVerifier{tok: &oidc.IDToken{Subject: "kc-1"}},
		claims: func(_ *oidc.IDToken, dst any) error {
			return json.Unmarshal([]byte(`{"email":"kc@club.test"}`), dst)
		},
	}

	id, err := v.Verify(context.Background(), "raw")
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "kc-1", Email: "kc@club.test"}, id)

	v.verifier = fakeIDVerifier{err: errors.New("expired")}
	_, err = v.Verify(context.Background(), "raw")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type stubVerifier struct{ mock.Mock }

func (s *stubVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	args := s.Called(ctx, raw)
	return args.Get(0).(Identity), args.Error(1)
}

type stubResolver struct{ mock.Mock }

func (s *stubResolver) Resolve(ctx context.Context, id Identity) (model.Role, error) {
	args := s.Called(ctx, id)
	return args.Get(0).(model.Role), args.Error(1)
}

func newApp(v Verifier, r RoleResolver, min model.Role) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(v, r))
	app.Get("/api/x", RequireRole(min), func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if ClaimsFromContext(c.UserContext()) != claims {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.Subject + ":" + string(claims.Role))
	})
	return app
}

func TestMiddleware(t *testing.T) {
	v := &stubVerifier{}
	r := &stubResolver{}
	app := newApp(v, r, model.RoleStaff)

	v.On("Verify", mock.Anything, "good").Return(Identity{Subject: "u1", Email: "a@club.test"}, nil)
	v.On("Verify", mock.Anything, "bad").Return(Identity{}, ErrInvalidToken)
	r.On("Resolve", mock.Anything, Identity{Subject: "u1", Email: "a@club.test"}).Return(model.RoleStaff, nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic Zm9v", fiber.StatusUnauthorized},
		{"invalid token", "Bearer bad", fiber.StatusUnauthorized},
		{"ok", "Bearer good", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	v := &stubVerifier{}
	r := &stubResolver{}
	app := newApp(v, r, model.RoleAdmin)

	v.On("Verify", mock.Anything, "good").Return(Identity{Subject: "u1"}, nil)
	r.On("Resolve", mock.Anything, Identity{Subject: "u1"}).Return(model.RoleMember, nil)

	req := httptest.NewRequest("GET", "/api/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestBearer(t *testing.T) {
	tok, ok := bearer("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearer("Bearer ")
	assert.False(t, ok)
}
