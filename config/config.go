package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Reader    ReaderConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls page fetching.
type FetchConfig struct {
	// DefaultTimeout is the per-request fetch timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s
}

// ReaderConfig carries the extraction engine defaults applied when a
// request leaves them unset.
type ReaderConfig struct {
	// CharThreshold is the minimum extracted text length accepted
	// without escalating the heuristics.
	CharThreshold int // default: 500

	// MaxElemsToParse rejects documents with more elements than this.
	// 0 means unlimited.
	MaxElemsToParse int // default: 0

	// Debug enables verbose extraction diagnostics.
	Debug bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the read response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("READABLE_HOST", "0.0.0.0"),
			Port: envIntOr("READABLE_PORT", 8080),
			Mode: envOr("READABLE_MODE", "release"),
		},
		Fetch: FetchConfig{
			DefaultTimeout: envDurationOr("READABLE_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:     envDurationOr("READABLE_MAX_TIMEOUT", 120*time.Second),
		},
		Reader: ReaderConfig{
			CharThreshold:   envIntOr("READABLE_CHAR_THRESHOLD", 500),
			MaxElemsToParse: envIntOr("READABLE_MAX_ELEMS", 0),
			Debug:           envBoolOr("READABLE_READER_DEBUG", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("READABLE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("READABLE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("READABLE_RATE_RPS", 5.0),
			Burst:             envIntOr("READABLE_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("READABLE_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("READABLE_LOG_LEVEL", "info"),
			Format: envOr("READABLE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
