package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lepinkainen/movierating/internal/cache"
	"github.com/lepinkainen/movierating/internal/omdb"
	"github.com/spf13/viper"
)

const (
	// AppName names the config and cache directories
	AppName = "movierating"
	// APIKeyEnvVar is the environment variable holding the OMDB API key
	APIKeyEnvVar = "OMDB_API_KEY"

	// DefaultBaseURL is used when omdb.base_url is not set
	DefaultBaseURL = omdb.DefaultBaseURL
	// DefaultTimeout is used when omdb.timeout is missing or invalid
	DefaultTimeout = omdb.DefaultTimeout
	// DefaultCacheTTL is how long successful lookups stay cached
	DefaultCacheTTL = cache.DefaultCacheTTL
	// DefaultNegativeCacheTTL is how long "Movie not found!" answers stay cached
	DefaultNegativeCacheTTL = cache.NegativeCacheTTL
)

// Config holds the resolved runtime configuration
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	CacheEnabled     bool
	CacheDBFile      string
	CacheTTL         time.Duration
	NegativeCacheTTL time.Duration
	Refresh          bool
}

// SetDefaults registers default values and environment bindings with viper
func SetDefaults() {
	viper.SetDefault("omdb.base_url", DefaultBaseURL)
	viper.SetDefault("omdb.timeout", DefaultTimeout.String())

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.dbfile", "")
	viper.SetDefault("cache.ttl", DefaultCacheTTL.String())
	viper.SetDefault("cache.negative_ttl", DefaultNegativeCacheTTL.String())
	viper.SetDefault("cache.refresh", false)

	// Bind specific environment variables to config keys
	if err := viper.BindEnv("OMDBAPIKey", APIKeyEnvVar); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}
}

// Load snapshots the current viper state into a Config
func Load() Config {
	dbFile := viper.GetString("cache.dbfile")
	if dbFile == "" {
		dbFile = DefaultCacheDBFile()
	}

	return Config{
		BaseURL:          viper.GetString("omdb.base_url"),
		Timeout:          durationOrDefault("omdb.timeout", DefaultTimeout),
		CacheEnabled:     viper.GetBool("cache.enabled"),
		CacheDBFile:      dbFile,
		CacheTTL:         durationOrDefault("cache.ttl", DefaultCacheTTL),
		NegativeCacheTTL: durationOrDefault("cache.negative_ttl", DefaultNegativeCacheTTL),
		Refresh:          viper.GetBool("cache.refresh"),
	}
}

// DefaultCacheDBFile returns the cache database path under the user cache directory
func DefaultCacheDBFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", AppName+"-cache.db")
	}
	return filepath.Join(dir, AppName, "cache.db")
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}
