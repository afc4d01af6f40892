// Package config loads runtime settings for the pedantic commands from
// PEDANTIC_* environment variables. Command-line flags override these values.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/percolate/pedantic/internal/fileutil"
	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/validator"
)

const (
	// DefaultPort is the validator service port when PORT is unset.
	DefaultPort = 5000
	// DefaultCacheTTL is how long a converted schema stays fresh.
	DefaultCacheTTL = 1800 * time.Second
	// DefaultHTTPTimeout bounds remote fetches.
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultMaxInlineSize bounds inline content accepted by the MCP tools.
	DefaultMaxInlineSize = 10 * 1024 * 1024
)

// Config holds settings shared by the pedantic commands.
type Config struct {
	// Port is the validator service listen port.
	Port int
	// CacheTTL is the freshness window for cached schemas.
	CacheTTL time.Duration
	// CacheDir holds cached schemas and downloaded whitelists.
	CacheDir string
	// RedisAddr enables the Redis schema cache when set.
	RedisAddr string
	// RedisDB selects the Redis database.
	RedisDB int
	// LogLevel is the minimum level of structured log output.
	LogLevel slog.Level
	// LogFormat is "text" or "json".
	LogFormat string
	// HTTPTimeout bounds RAML and whitelist downloads.
	HTTPTimeout time.Duration
	// MaxInlineSize bounds inline RAML and fixtures passed to MCP tools.
	MaxInlineSize int64
	// AllowPrivateIPs lets MCP tools fetch from loopback and private hosts.
	AllowPrivateIPs bool
}

// Load reads the configuration from the environment. Invalid values log a
// warning and fall back to the default.
func Load() *Config {
	return &Config{
		Port:            envInt("PORT", DefaultPort),
		CacheTTL:        envDuration("PEDANTIC_CACHE_TTL", DefaultCacheTTL),
		CacheDir:        envString("PEDANTIC_CACHE_DIR", os.TempDir()),
		RedisAddr:       os.Getenv("PEDANTIC_REDIS_ADDR"),
		RedisDB:         envIndex("PEDANTIC_REDIS_DB", 0),
		LogLevel:        envLevel("PEDANTIC_LOG_LEVEL", slog.LevelInfo),
		LogFormat:       envFormat("PEDANTIC_LOG_FORMAT", "text"),
		HTTPTimeout:     envDuration("PEDANTIC_HTTP_TIMEOUT", DefaultHTTPTimeout),
		MaxInlineSize:   int64(envInt("PEDANTIC_MAX_INLINE_SIZE", DefaultMaxInlineSize)),
		AllowPrivateIPs: envBool("PEDANTIC_ALLOW_PRIVATE_IPS", false),
	}
}

// NewLogger builds the structured logger described by c, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoadWhitelist reads a JSON or YAML whitelist file.
func LoadWhitelist(path string) (validator.Whitelist, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &pedanticerrors.ConfigError{Option: "whitelist", Value: path, Message: "failed to read whitelist", Cause: err}
	}
	if info.IsDir() {
		return nil, &pedanticerrors.ConfigError{Option: "whitelist", Value: path, Cause: fileutil.ErrIsDirectory}
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, &pedanticerrors.ConfigError{Option: "whitelist", Value: path, Message: "failed to read whitelist", Cause: err}
	}
	wl, err := validator.ParseWhitelist(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return wl, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

// envIndex is envInt for values where zero is meaningful.
func envIndex(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid index env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Plain numbers are seconds.
		secs, convErr := strconv.Atoi(v)
		if convErr != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return level
}

func envFormat(key, fallback string) string {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "":
		return fallback
	case "text", "json":
		return v
	default:
		slog.Warn("invalid log format env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
}
