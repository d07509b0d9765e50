package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - backend.go: Content backend configuration
//   - session.go: Session cookie configuration
//   - http.go: HTTP server configuration
//   - cache.go: Page cache configuration
type AppConfig struct {
	// IsDev controls development mode behavior (hot reloading, loud cookie
	// misuse failures, etc.). Set DEV=true or NODE_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Backend is the content backend configuration.
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Session is the session cookie configuration.
	Session SessionConfig

	// HTTP server configuration.
	HTTP HTTPConfig

	// Cache is the anonymous page cache configuration.
	Cache CacheConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.HTTP.Sanitize()
	c.Cache.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
