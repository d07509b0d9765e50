package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// SessionConfig contains session cookie configuration.
type SessionConfig struct {
	// CookieDomain scopes session cookies. Leave empty to use the request
	// domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// AccessTokenTTL is the access-token cookie lifetime.
	AccessTokenTTL time.Duration `env:"SESSION_ACCESS_TTL" envDefault:"30m"`

	// RefreshTokenTTL is the refresh-token cookie lifetime.
	RefreshTokenTTL time.Duration `env:"SESSION_REFRESH_TTL" envDefault:"336h"`
}

// Sanitize applies guardrails to session configuration values. A cookie
// domain that is a bare public suffix (e.g. "com" or "co.uk") would be
// rejected by browsers and silently break sessions, so it is cleared.
func (s *SessionConfig) Sanitize() {
	if s.AccessTokenTTL <= 0 {
		s.AccessTokenTTL = 30 * time.Minute
	}
	if s.RefreshTokenTTL <= 0 {
		s.RefreshTokenTTL = 14 * 24 * time.Hour
	}

	domain := strings.TrimPrefix(strings.TrimSpace(s.CookieDomain), ".")
	if domain == "" {
		s.CookieDomain = ""
		return
	}
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix == domain {
		s.CookieDomain = ""
		return
	}
	s.CookieDomain = domain
}
