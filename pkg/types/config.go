// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that talk to the
// listing backend.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "estate-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on 429 and 503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ListingConfig holds settings for the listing API client.
type ListingConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root, e.g. "http://localhost:5000/api".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// PageSize is the number of listings requested per page (default 20).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// TypeaheadConfig holds settings for debounced suggestion lookups.
type TypeaheadConfig struct {
	// Debounce is the quiet window after the last keystroke (default 500ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// MinLength is the shortest term that triggers a lookup (default 2).
	MinLength int `json:"min_length" yaml:"min_length"`
}

// CacheBackend selects where suggestion responses are cached.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// CacheConfig holds settings for the suggestion cache.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend"`

	// TTL is how long a cached suggestion list stays valid (default 1m).
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// RedisAddr is host:port of the Redis server when Backend is redis.
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`

	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
}

// FixtureConfig holds settings for the local development backend.
type FixtureConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr"`

	// DataFile is a YAML file of listings to serve.
	DataFile string `json:"data_file" yaml:"data_file"`

	// AllowedOrigins lists CORS origins; empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// LoggingConfig selects the zap logger flavour.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json" (default console).
	Format string `json:"format" yaml:"format"`
}

// Config groups every component configuration.
type Config struct {
	Listing   ListingConfig   `json:"listing" yaml:"listing"`
	Typeahead TypeaheadConfig `json:"typeahead" yaml:"typeahead"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Fixture   FixtureConfig   `json:"fixture" yaml:"fixture"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// Defaults for zero-valued configuration fields.
const (
	DefaultBaseURL    = "http://localhost:5000/api"
	DefaultPageSize   = 20
	DefaultTimeout    = 15 * time.Second
	DefaultUserAgent  = "estate-search/0.1"
	DefaultMaxRetries = 3
	DefaultDebounce   = 500 * time.Millisecond
	DefaultMinLength  = 2
	DefaultCacheTTL   = time.Minute
	DefaultFixture    = ":5000"
)

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	c.Listing.ApplyDefaults()
	c.Typeahead.ApplyDefaults()
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheNone
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Fixture.Addr == "" {
		c.Fixture.Addr = DefaultFixture
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// ApplyDefaults fills zero-valued listing fields.
func (c *ListingConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
}

// ApplyDefaults fills zero-valued type-ahead fields.
func (c *TypeaheadConfig) ApplyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinLength
	}
}
