package httpx

import (
	"context"

	"github.com/pressgate/pressgate/internal/domain/model"
)

// userKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type userKey struct{}

type csrfKey struct{}

// SetUserInContext returns a child context that carries the authenticated user.
// If user is nil, the original ctx is returned unchanged.
func SetUserInContext(ctx context.Context, user *model.PrivateUser) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user and whether one is present.
func UserFromContext(ctx context.Context) (*model.PrivateUser, bool) {
	if user, ok := ctx.Value(userKey{}).(*model.PrivateUser); ok && user != nil {
		return user, true
	}
	return nil, false
}

// IsAuthenticated reports whether the request context carries a user.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := UserFromContext(ctx)
	return ok
}

// SetCSRFTokenInContext stores the anti-forgery token for template access.
func SetCSRFTokenInContext(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, csrfKey{}, token)
}

// CSRFTokenFromContext returns the anti-forgery token, or "" when absent.
func CSRFTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(csrfKey{}).(string); ok {
		return token
	}
	return ""
}
