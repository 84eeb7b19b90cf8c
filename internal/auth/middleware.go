package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"clubapi/internal/model"
)

const claimsLocalKey = "claims"

// RoleResolver looks up the club role of a verified user.
type RoleResolver interface {
	Resolve(ctx context.Context, identity Identity) (model.Role, error)
}

type claimsKey struct{}

// Middleware rejects requests without a valid bearer token and stores the
// caller's claims in locals and in the user context.
func Middleware(verifier Verifier, resolver RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		ctx := c.UserContext()
		id, err := verifier.Verify(ctx, raw)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("event", "token_rejected").Msg("token rejected")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		role, err := resolver.Resolve(ctx, id)
		if err != nil {
			return err
		}

		claims := model.Claims{Subject: id.Subject, Email: id.Email, Role: role}
		c.Locals(claimsLocalKey, claims)
		c.SetUserContext(WithClaims(ctx, claims))
		return c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole answers 403 unless the caller's role ranks at least min.
func RequireRole(min model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ClaimsFrom(c).Role.AtLeast(min) {
			return fiber.NewError(fiber.StatusForbidden, "requires role "+string(min))
		}
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by Middleware, or zero claims.
func ClaimsFrom(c *fiber.Ctx) model.Claims {
	claims, _ := c.Locals(claimsLocalKey).(model.Claims)
	return claims
}

func WithClaims(ctx context.Context, claims model.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) model.Claims {
	claims, _ := ctx.Value(claimsKey{}).(model.Claims)
	return claims
}
