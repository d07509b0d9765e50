package config

import "time"

// CacheConfig contains the anonymous page cache configuration (Redis-based).
type CacheConfig struct {
	// Enabled turns the page cache on. Requires a reachable Redis.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"false"`

	// Redis connection settings for the page cache.
	RedisAddr     string `env:"CACHE_REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"CACHE_REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"CACHE_REDIS_DB"       envDefault:"0"`

	// PageTTL is the lifetime of a cached page.
	PageTTL time.Duration `env:"CACHE_PAGE_TTL" envDefault:"1m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.PageTTL <= 0 {
		c.PageTTL = time.Minute
	}
	if c.RedisAddr == "" {
		c.Enabled = false
	}
}
