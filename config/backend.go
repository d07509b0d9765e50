package config

import (
	"strings"
	"time"
)

// BackendConfig contains the content backend connection settings.
type BackendConfig struct {
	// BaseURL is the backend API origin, e.g. "http://localhost:8000".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000"`

	// CSRFPath is the anti-forgery token endpoint path.
	CSRFPath string `env:"CSRF_PATH" envDefault:"/auth/csrf/"`

	// Timeout bounds each backend exchange.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(b.BaseURL, "/")
	if b.CSRFPath == "" {
		b.CSRFPath = "/auth/csrf/"
	}
	if !strings.HasPrefix(b.CSRFPath, "/") {
		b.CSRFPath = "/" + b.CSRFPath
	}
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}
