package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Session   SessionConfig
	OCR       OCRConfig
	Crawler   CrawlerConfig
	Storage   StorageConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8082
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ControlURL connects to an already-running browser instead of
	// launching one (the remote-automation deployment mode).
	ControlURL string

	// Stealth injects anti-bot-detection JS before navigation.
	Stealth bool // default: false

	// ViewportWidth/ViewportHeight set the page viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	// DeviceScaleFactor sets the device pixel ratio.
	DeviceScaleFactor float64 // default: 2.0
}

// SessionConfig controls per-scan session behavior.
type SessionConfig struct {
	// DefaultTimeout is the navigation deadline when the client omits one.
	DefaultTimeout time.Duration // default: 15s

	// MaxTimeout caps the client-supplied navigation deadline. The
	// body-readiness wait is bounded by the same capped deadline.
	MaxTimeout time.Duration // default: 120s

	// DefaultSettleDelay is the fixed post-navigation wait before capture
	// when the client omits pageload_wait_seconds.
	DefaultSettleDelay time.Duration // default: 5s
}

// OCRConfig controls the login-page classifier.
type OCRConfig struct {
	// Keywords are matched as substrings against normalized OCR text and
	// the normalized page title.
	Keywords []string

	// MaxWorkers bounds concurrent recognition jobs. 0 means one worker
	// per segmentation mode.
	MaxWorkers int

	// Languages is the recognition engine language set.
	Languages string // default: "eng+vie"
}

// CrawlerConfig controls external script fetching.
type CrawlerConfig struct {
	// FetchConcurrency bounds concurrent external script fetches.
	FetchConcurrency int // default: 16

	// FetchTimeout is the per-fetch deadline.
	FetchTimeout time.Duration // default: 15s
}

// StorageConfig controls the S3-compatible artifact store.
// WriteEndpoint and ReadHostname may differ: writes go to the storage
// backend directly while presigned links point at a read/CDN hostname.
type StorageConfig struct {
	WriteEndpoint string // required, e.g. "http://minio:9000"
	ReadScheme    string // required, "http" or "https"
	ReadHostname  string // required, e.g. "cdn.example.com"
	Bucket        string // required
	AccessKey     string // required
	PrivateKey    string // required
	Region        string // default: "vn"

	// LinkExpiry is the presigned URL lifetime.
	LinkExpiry time.Duration // default: 168h (7 days)
}

// CacheConfig controls the scan response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000

	// TTL is how long a cached scan stays servable.
	TTL time.Duration // default: 10m
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client IP.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// Call Validate before use: storage settings have no defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCREENBERRY_HOST", "0.0.0.0"),
			Port: envIntOr("SCREENBERRY_PORT", 8082),
			Mode: envOr("SCREENBERRY_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("SCREENBERRY_HEADLESS", true),
			NoSandbox:         envBoolOr("SCREENBERRY_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("SCREENBERRY_BROWSER_BIN"),
			ControlURL:        os.Getenv("SCREENBERRY_BROWSER_URL"),
			Stealth:           envBoolOr("SCREENBERRY_STEALTH", false),
			ViewportWidth:     envIntOr("SCREENBERRY_VIEWPORT_WIDTH", 1920),
			ViewportHeight:    envIntOr("SCREENBERRY_VIEWPORT_HEIGHT", 1080),
			DeviceScaleFactor: envFloatOr("SCREENBERRY_DEVICE_SCALE", 2.0),
		},
		Session: SessionConfig{
			DefaultTimeout:     envDurationOr("SCREENBERRY_DEFAULT_TIMEOUT", 15*time.Second),
			MaxTimeout:         envDurationOr("SCREENBERRY_MAX_TIMEOUT", 120*time.Second),
			DefaultSettleDelay: envDurationOr("SCREENBERRY_SETTLE_DELAY", 5*time.Second),
		},
		OCR: OCRConfig{
			Keywords: envSliceOr("SCREENBERRY_LOGIN_KEYWORDS", []string{
				"login", "log in", "sign in", "single sign", "dang nhap", "password", "mat khau",
			}),
			MaxWorkers: envIntOr("MAX_WORKER_COUNT", 0),
			Languages:  envOr("SCREENBERRY_OCR_LANGUAGES", "eng+vie"),
		},
		Crawler: CrawlerConfig{
			FetchConcurrency: envIntOr("SCREENBERRY_FETCH_CONCURRENCY", 16),
			FetchTimeout:     envDurationOr("SCREENBERRY_FETCH_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			WriteEndpoint: os.Getenv("S3_WRITE_ENDPOINT"),
			ReadScheme:    os.Getenv("S3_READ_SCHEME"),
			ReadHostname:  os.Getenv("S3_READ_HOSTNAME"),
			Bucket:        os.Getenv("S3_BUCKET_NAME"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			PrivateKey:    os.Getenv("S3_PRIVATE_KEY"),
			Region:        envOr("S3_REGION", "vn"),
			LinkExpiry:    envDurationOr("S3_LINK_EXPIRY", 7*24*time.Hour),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("CACHE_TTL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCREENBERRY_RATE_RPS", 2.0),
			Burst:             envIntOr("SCREENBERRY_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("SCREENBERRY_LOG_LEVEL", "info"),
			Format: envOr("SCREENBERRY_LOG_FORMAT", "json"),
		},
	}
}

// Validate reports the first missing required setting. Storage settings are
// required: without them no artifact can be published and every scan would
// degrade, so startup fails instead.
func (c *Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"S3_WRITE_ENDPOINT", c.Storage.WriteEndpoint},
		{"S3_READ_SCHEME", c.Storage.ReadScheme},
		{"S3_READ_HOSTNAME", c.Storage.ReadHostname},
		{"S3_BUCKET_NAME", c.Storage.Bucket},
		{"S3_ACCESS_KEY", c.Storage.AccessKey},
		{"S3_PRIVATE_KEY", c.Storage.PrivateKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing env $%s", r.name)
		}
	}
	return nil
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
