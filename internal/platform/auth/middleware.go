package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// CookieName is the session cookie set on login and checked by the gate.
const CookieName = "token"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved acting user attached to the request context.
type Identity struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     Role
}

// IdentityResolver resolves a verified credential subject to a live user
// record. A subject that no longer exists fails authentication.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id uuid.UUID) (*Identity, error)
}

// Middleware validates the request credential (session cookie first, then
// Authorization bearer header), resolves the acting identity, and attaches it
// to the request context. Missing, invalid or expired credentials terminate
// the request before any handler executes.
func Middleware(issuer *TokenIssuer, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := credentialFromRequest(c)
			if tokenStr == "" {
				return apperr.Authentication("not authorized, no token")
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				return apperr.Authentication("not authorized, token failed verification")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return apperr.Authentication("not authorized, malformed subject")
			}

			identity, err := resolver.ResolveIdentity(c.Request().Context(), userID)
			if err != nil || identity == nil {
				return apperr.Authentication("not authorized, user no longer exists")
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, identity)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func credentialFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// IdentityFromContext returns the acting identity, or nil outside the gate.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by internal callers acting on behalf of a user.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
