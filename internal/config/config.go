package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultSheetCSVURL is the published CSV export of the company spreadsheet.
const DefaultSheetCSVURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSiT9tfmTO0wAi6FZEtuYNRsrIwhq_iBMh-5vqix31ct14nZB58v6HfOM6vAawYTtHgk6IaePCUCZsB/pub?output=csv"

// Cache backends.
const (
	CacheBackendFile     = "file"
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
)

var defaultAllowedOrigins = []string{
	"https://laukaainfo.fi",
	"https://www.laukaainfo.fi",
	"http://localhost:8080",
	"http://localhost:3000",
	"http://127.0.0.1:8080",
	"http://localhost",
}

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Enabled reports whether a limit was configured.
func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0 && r.Interval > 0
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port        string        `validate:"required,numeric"`
	SheetCSVURL string        `validate:"required,url"`
	SnapshotTTL time.Duration `validate:"gt=0"`
	SnapshotKey string        `validate:"required"`

	CacheBackend  string `validate:"oneof=file memory postgres"`
	CacheDir      string `validate:"required"`
	MediaCacheDir string `validate:"required"`
	DatabaseURL   string `validate:"required_if=CacheBackend postgres"`

	AllowedOrigins []string `validate:"required,dive,url"`
	DefaultOrigin  string   `validate:"required,url"`

	CSVTimeout          time.Duration `validate:"gt=0"`
	UpstreamInsecureTLS bool
	MediaAttemptTimeout time.Duration `validate:"gt=0"`
	MediaTotalTimeout   time.Duration `validate:"gtefield=MediaAttemptTimeout"`
	DriveAPIKey         string

	PhoneRegion    string `validate:"len=2,alpha"`
	ImageProxyPath string `validate:"required"`

	RateLimitRefresh RateLimitConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		SheetCSVURL:         getEnv("SHEET_CSV_URL", DefaultSheetCSVURL),
		SnapshotTTL:         parseDuration(getEnv("SNAPSHOT_TTL", "1h"), time.Hour),
		SnapshotKey:         getEnv("SNAPSHOT_KEY", "companies_cache.json"),
		CacheBackend:        strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendFile)),
		CacheDir:            getEnv("CACHE_DIR", "."),
		MediaCacheDir:       getEnv("MEDIA_CACHE_DIR", "drive_cache"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		AllowedOrigins:      parseList(getEnv("ALLOWED_ORIGINS", ""), defaultAllowedOrigins),
		DefaultOrigin:       getEnv("DEFAULT_ORIGIN", "https://laukaainfo.fi"),
		CSVTimeout:          parseDuration(getEnv("CSV_TIMEOUT", "30s"), 30*time.Second),
		UpstreamInsecureTLS: parseBool(getEnv("UPSTREAM_INSECURE_TLS", "true"), true),
		MediaAttemptTimeout: parseDuration(getEnv("MEDIA_ATTEMPT_TIMEOUT", "6s"), 6*time.Second),
		MediaTotalTimeout:   parseDuration(getEnv("MEDIA_TOTAL_TIMEOUT", "24s"), 24*time.Second),
		DriveAPIKey:         os.Getenv("DRIVE_API_KEY"),
		PhoneRegion:         strings.ToUpper(getEnv("PHONE_REGION", "FI")),
		ImageProxyPath:      getEnv("IMAGE_PROXY_PATH", "get_image.php"),
	}

	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_REFRESH")); raw != "" {
		rl, err := parseRateLimit(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_REFRESH value: %w", err)
		}
		cfg.RateLimitRefresh = rl
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return fallback
	}
	return b
}

// parseList splits a comma separated value, dropping blanks.
func parseList(input string, fallback []string) []string {
	var out []string
	for _, item := range strings.Split(input, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
