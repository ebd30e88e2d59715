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
	Browser   BrowserConfig
	Runtime   RuntimeConfig
	Discovery DiscoveryConfig
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

// FetchConfig controls the HTTP fetcher.
type FetchConfig struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration // default: 15s

	// MaxBodyBytes caps response bodies to prevent unbounded memory use.
	MaxBodyBytes int64 // default: 10 MiB

	// Proxy is an optional proxy URL applied to every request.
	Proxy string
}

// BrowserConfig controls the embedded browser used by the sandboxed
// interpreter backend and the authentication bridge.
type BrowserConfig struct {
	Headless  bool   // default: true
	NoSandbox bool   // default: false (needed in Docker)
	Bin       string // Chromium binary override
}

// RuntimeConfig controls the hybrid extraction runtime.
type RuntimeConfig struct {
	// NativeEnabled enables the rich readability-augmented backend.
	NativeEnabled bool // default: true

	// SandboxEnabled enables the browser-sandboxed interpreter backend.
	// Ignored when NativeEnabled is true: the two specialized backends
	// are alternatives, never stacked.
	SandboxEnabled bool // default: false

	// SandboxReadyTimeout bounds the warm-up wait at startup.
	SandboxReadyTimeout time.Duration // default: 10s
}

// DiscoveryConfig controls the bulk-discovery workflow.
type DiscoveryConfig struct {
	// RequestsPerSecond throttles category/recipe fetches per provider.
	RequestsPerSecond float64 // default: 2

	// MaxCategoryPages bounds paginated category discovery.
	MaxCategoryPages int // default: 50

	// ImageWorkers is the number of concurrent thumbnail resolvers.
	ImageWorkers int // default: 4
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting on the API.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// CacheConfig controls the scraped-recipe cache.
type CacheConfig struct {
	MaxEntries int // default: 500
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
			Host: envOr("FORAGE_HOST", "0.0.0.0"),
			Port: envIntOr("FORAGE_PORT", 8080),
			Mode: envOr("FORAGE_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("FORAGE_FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes: int64(envIntOr("FORAGE_MAX_BODY_BYTES", 10<<20)),
			Proxy:        os.Getenv("FORAGE_PROXY"),
		},
		Browser: BrowserConfig{
			Headless:  envBoolOr("FORAGE_HEADLESS", true),
			NoSandbox: envBoolOr("FORAGE_NO_SANDBOX", false),
			Bin:       os.Getenv("FORAGE_BROWSER_BIN"),
		},
		Runtime: RuntimeConfig{
			NativeEnabled:       envBoolOr("FORAGE_NATIVE_BACKEND", true),
			SandboxEnabled:      envBoolOr("FORAGE_SANDBOX_BACKEND", false),
			SandboxReadyTimeout: envDurationOr("FORAGE_SANDBOX_READY_TIMEOUT", 10*time.Second),
		},
		Discovery: DiscoveryConfig{
			RequestsPerSecond: envFloatOr("FORAGE_DISCOVERY_RPS", 2.0),
			MaxCategoryPages:  envIntOr("FORAGE_MAX_CATEGORY_PAGES", 50),
			ImageWorkers:      envIntOr("FORAGE_IMAGE_WORKERS", 4),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FORAGE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("FORAGE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FORAGE_RATE_RPS", 5.0),
			Burst:             envIntOr("FORAGE_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("FORAGE_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("FORAGE_LOG_LEVEL", "info"),
			Format: envOr("FORAGE_LOG_FORMAT", "json"),
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
