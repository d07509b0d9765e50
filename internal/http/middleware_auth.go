package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/gateway"
)

// UserResolver fetches the authenticated user over a bound gateway session.
// *service.AuthService satisfies it.
type UserResolver interface {
	CurrentUser(ctx context.Context, sess *gateway.Session) (*model.PrivateUser, error)
}

// OptionalAuth returns a middleware that resolves the current user when the
// cookie jar carries credentials. Unauthenticated requests pass through
// anonymously; a stale session is invalidated by the gateway and likewise
// continues anonymously.
func OptionalAuth(gw *gateway.Gateway, auth UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := gw.Bind(w, r)
			if !sess.Store().HasSession() {
				next.ServeHTTP(w, r)
				return
			}
			user, err := auth.CurrentUser(r.Context(), sess)
			if err != nil {
				// Unauthorized already cleared the cookies; backend
				// trouble degrades to an anonymous page view.
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetUserInContext(r.Context(), user)))
		})
	}
}

// RequireAuth returns a middleware that redirects unauthenticated browser
// requests to the login page, carrying the original URL so login can return
// the user where they started. Run it after OptionalAuth.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				redirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	if r.Method != http.MethodGet {
		// A mutation's path is not revisitable after login; return to the
		// page the form was submitted from instead.
		target = refererPath(r)
	}
	if SafeRedirectPath(target) == "" {
		target = "/"
	}
	http.Redirect(w, r, "/login?redirect_uri="+url.QueryEscape(target), http.StatusSeeOther)
}

func refererPath(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil {
		return ""
	}
	return u.RequestURI()
}

// SafeRedirectPath returns the path if it is a same-site relative target,
// or "" when it could leave the origin.
func SafeRedirectPath(raw string) string {
	// Browsers treat "/\" like "//", so both are cross-origin.
	if raw == "" || !strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return raw
}
