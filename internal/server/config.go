package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/loan-schedule/internal/cache"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	Logging         config.LoggingConfig `yaml:"logging"`
	Cache           CacheConfig          `yaml:"cache"`
	RateLimit       RateLimitConfig      `yaml:"rateLimit"`
	uploadSizeBytes int64
}

// CacheConfig selects where rendered schedules are cached.
type CacheConfig struct {
	Disabled     bool   `yaml:"disabled,omitempty"`
	RedisAddress string `yaml:"redisAddress,omitempty"` // empty keeps the cache in memory
	TTL          string `yaml:"ttl,omitempty"`          // e.g. 30m, 1h
	ttl          time.Duration
}

// RateLimitConfig bounds schedule requests per client address. Zero
// RequestsPerMinute disables the limit.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requestsPerMinute,omitempty"`
	Burst             int `yaml:"burst,omitempty"`
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes),
		Logging:         config.LoggingConfig{},
		Cache:           CacheConfig{ttl: constants.DefaultCacheTTLSeconds * time.Second},
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// TTLDuration returns how long a cached schedule stays valid.
func (c CacheConfig) TTLDuration() time.Duration {
	return c.ttl
}

// Build returns the configured cache, or nil when caching is disabled.
func (c CacheConfig) Build() cache.Cache {
	switch {
	case c.Disabled:
		return nil
	case c.RedisAddress != "":
		return cache.NewRedisCache(c.RedisAddress, c.ttl)
	}
	return cache.NewMemoryCache(c.ttl)
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	c.Cache.ttl = constants.DefaultCacheTTLSeconds * time.Second
	if ttl := strings.TrimSpace(c.Cache.TTL); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
		c.Cache.ttl = d
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid rate limit: requestsPerMinute must not be negative, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMinute
	}

	sizeStr := strings.TrimSpace(c.MaxUploadSize)
	if sizeStr == "" {
		c.uploadSizeBytes = constants.DefaultMaxUploadSizeBytes
		c.MaxUploadSize = fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	if n < 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
