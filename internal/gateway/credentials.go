package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Canonical cookie names for the session contract. The hyphenated spellings
// that appear in older deployments are legacy and are neither read nor
// emitted.
const (
	// AccessTokenCookie holds the short-lived session access token.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie holds the long-lived refresh token.
	RefreshTokenCookie = "refresh_token"
	// CSRFTokenCookie caches the backend-issued anti-forgery token. It is
	// deliberately not HttpOnly: the page must be able to read it to echo it
	// back on state-changing requests.
	CSRFTokenCookie = "csrf_token"
)

// CookiePolicy fixes the attributes applied to session cookies emitted by
// the rendering tier. The lifetimes mirror the backend token lifetimes.
type CookiePolicy struct {
	// AccessTokenTTL is the access-token cookie lifetime (default 30m).
	AccessTokenTTL time.Duration
	// RefreshTokenTTL is the refresh-token cookie lifetime (default 14d).
	RefreshTokenTTL time.Duration
	// Domain scopes emitted cookies; empty uses the request host.
	Domain string
}

// DefaultCookiePolicy returns the wire-contract lifetimes.
func DefaultCookiePolicy() CookiePolicy {
	return CookiePolicy{
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 14 * 24 * time.Hour,
	}
}

func (p CookiePolicy) ttlFor(name string) time.Duration {
	switch name {
	case AccessTokenCookie:
		if p.AccessTokenTTL > 0 {
			return p.AccessTokenTTL
		}
		return 30 * time.Minute
	case RefreshTokenCookie:
		if p.RefreshTokenTTL > 0 {
			return p.RefreshTokenTTL
		}
		return 14 * 24 * time.Hour
	default:
		return 0
	}
}

// headerWrittenChecker is implemented by response writers that can report
// whether the header block has already been flushed. The logging middleware's
// wrapper implements it.
type headerWrittenChecker interface {
	HeaderWritten() bool
}

// CredentialStore reads session-identifying tokens from one incoming
// request's cookie jar and writes or deletes cookies on the corresponding
// response. It is request-scoped; nothing is shared across invocations.
// Writes are serialized so handlers may fan out concurrent backend calls
// over one bound session.
type CredentialStore struct {
	r       *http.Request
	w       http.ResponseWriter
	policy  CookiePolicy
	devMode bool
	logger  *slog.Logger

	mu sync.Mutex
}

// CredentialStoreOptions groups dependencies for NewCredentialStore.
type CredentialStoreOptions struct {
	Request  *http.Request
	Response http.ResponseWriter
	Config   CredentialStoreConfig
}

// CredentialStoreConfig groups the non-request-scoped configuration.
type CredentialStoreConfig struct {
	Policy  CookiePolicy
	DevMode bool
	Logger  *slog.Logger
}

// NewCredentialStore builds a store bound to one request/response pair.
func NewCredentialStore(opts CredentialStoreOptions) *CredentialStore {
	return &CredentialStore{
		r:       opts.Request,
		w:       opts.Response,
		policy:  opts.Config.Policy,
		devMode: opts.Config.DevMode,
		logger:  opts.Config.Logger,
	}
}

func (s *CredentialStore) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Read returns the named credential from the incoming request. Absence is a
// normal state (anonymous session), reported via the boolean, never an error.
func (s *CredentialStore) Read(name string) (string, bool) {
	if s.r == nil {
		return "", false
	}
	c, err := s.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// HasSession reports whether the request carries an access token.
func (s *CredentialStore) HasSession() bool {
	_, ok := s.Read(AccessTokenCookie)
	return ok
}

// CookieHeader serializes the request's full cookie jar for forwarding to
// the backend, with extra cookies (e.g. a freshly brokered anti-forgery
// token) appended.
func (s *CredentialStore) CookieHeader(extra ...*http.Cookie) string {
	var parts []string
	seen := map[string]bool{}
	for _, c := range extra {
		if c == nil || c.Name == "" {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
		seen[c.Name] = true
	}
	if s.r != nil {
		for _, c := range s.r.Cookies() {
			if seen[c.Name] {
				continue
			}
			parts = append(parts, c.Name+"="+c.Value)
		}
	}
	return strings.Join(parts, "; ")
}

// WriteSession emits a session cookie with the contract attributes:
// HttpOnly, SameSite=Lax, Secure when the request arrived over HTTPS, and
// the policy lifetime for the name.
func (s *CredentialStore) WriteSession(name, value string) {
	ttl := s.policy.ttlFor(name)
	s.write(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.policy.Domain,
		HttpOnly: true,
		Secure:   s.isSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

// WriteCSRF caches the anti-forgery token. Not HttpOnly by contract, and no
// fixed lifetime beyond the backend's own expiry.
func (s *CredentialStore) WriteCSRF(value string) {
	s.write(&http.Cookie{
		Name:     CSRFTokenCookie,
		Value:    value,
		Path:     "/",
		Domain:   s.policy.Domain,
		HttpOnly: false,
		Secure:   s.isSecure(),
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete removes the named cookie. Deleting an absent cookie is a no-op by
// design; callers may delete unconditionally.
func (s *CredentialStore) Delete(name string) {
	s.write(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.policy.Domain,
		HttpOnly: name != CSRFTokenCookie,
		Secure:   s.isSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// DeleteSession removes both session cookies.
func (s *CredentialStore) DeleteSession() {
	s.Delete(AccessTokenCookie)
	s.Delete(RefreshTokenCookie)
}

// write applies a cookie to the response. Writing after the header block is
// flushed is a programmer error: it panics in dev builds and is logged and
// swallowed in production, because session persistence is best-effort from
// this tier (the backend remains the source of truth).
func (s *CredentialStore) write(c *http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		s.log().Warn("cookie write with no response writer", "cookie", c.Name)
		return
	}
	if hw, ok := s.w.(headerWrittenChecker); ok && hw.HeaderWritten() {
		if s.devMode {
			panic(fmt.Sprintf("gateway: cookie %q written after response headers were sent", c.Name))
		}
		s.log().Error("cookie written after response headers were sent", "cookie", c.Name)
		return
	}
	http.SetCookie(s.w, c)
}

func (s *CredentialStore) isSecure() bool {
	if s.r == nil {
		return false
	}
	if s.r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(s.r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// SplitSetCookieHeader splits a flattened Set-Cookie header value that an
// intermediary joined with commas. A comma only terminates a cookie when it
// is followed by a token and "=" (the start of the next cookie's name);
// bare commas, such as the ones inside Expires dates, belong to the current
// cookie.
func SplitSetCookieHeader(v string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(v); i++ {
		if v[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(v) && (v[j] == ' ' || v[j] == '\t') {
			j++
		}
		k := j
		for k < len(v) && isCookieNameByte(v[k]) {
			k++
		}
		if k > j && k < len(v) && v[k] == '=' {
			if p := strings.TrimSpace(v[start:i]); p != "" {
				parts = append(parts, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(v[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// isCookieNameByte reports whether b is valid in an RFC 6265 cookie-name
// token.
func isCookieNameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// parseBackendCookies extracts cookies from a backend response, tolerating
// both properly repeated Set-Cookie headers and a single flattened value.
func parseBackendCookies(resp *http.Response) []*http.Cookie {
	var out []*http.Cookie
	for _, raw := range resp.Header.Values("Set-Cookie") {
		for _, part := range SplitSetCookieHeader(raw) {
			if c, err := http.ParseSetCookie(part); err == nil {
				out = append(out, c)
			}
		}
	}
	return out
}
