package httpx

import (
	"crypto/subtle"
	"net/http"

	"github.com/pressgate/pressgate/internal/gateway"
)

// csrfFormField is the hidden input every mutating form carries.
const csrfFormField = "csrf_token"

// CSRFProtect returns a middleware that validates browser form submissions
// with the double-submit pattern against the backend-issued token. The
// token cookie is minted by the backend and relayed by the gateway, never
// generated here; this layer only checks that the form echo matches the
// cookie before any backend call is attempted.
//
// GET, HEAD, OPTIONS, and TRACE requests are exempt.
func CSRFProtect() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrfCookieValue(r)
			if token != "" {
				r = r.WithContext(SetCSRFTokenInContext(r.Context(), token))
			}

			if requiresCSRFValidation(r.Method) {
				if !validCSRFEcho(r, token) {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func csrfCookieValue(r *http.Request) string {
	c, err := r.Cookie(gateway.CSRFTokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// requiresCSRFValidation reports whether the method mutates state. Safe
// methods (GET, HEAD, OPTIONS, TRACE) are exempt.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func validCSRFEcho(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	echo := r.Header.Get(gateway.CSRFHeader)
	if echo == "" {
		echo = r.PostFormValue(csrfFormField)
	}
	if echo == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(echo), []byte(token)) == 1
}
