package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Rate limiter backends
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// DefaultRateLimitIntervals are the cooldowns applied when RATELIMIT_INTERVALS
// does not override them. Actions not listed are never limited.
var DefaultRateLimitIntervals = map[string]time.Duration{
	"deposit":        1000 * time.Millisecond,
	"withdraw":       1000 * time.Millisecond,
	"setFunds":       1000 * time.Millisecond,
	"hireEmployee":   1000 * time.Millisecond,
	"fireEmployee":   1000 * time.Millisecond,
	"updateGrade":    1000 * time.Millisecond,
	"updateWage":     1000 * time.Millisecond,
	"getEmployees":   500 * time.Millisecond,
	"getFunds":       500 * time.Millisecond,
	"createBusiness": 2000 * time.Millisecond,
	"setPermissions": 2000 * time.Millisecond,
}

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Directory DirectoryConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Jobs      JobsConfig
	Host      HostConfig
	Log       LogConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int // Port for Prometheus metrics HTTP server
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver      string // postgres or memory
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	AutoMigrate bool
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	MatrixMaxEntries int // Upper bound on cached permission matrices
	Metrics          bool
}

// DirectoryConfig configures the employee directory read model
type DirectoryConfig struct {
	ReloadInterval time.Duration // Full reload backstop
	EntryTTL       time.Duration // Zero disables per-entry expiry
	ListenNotify   bool          // Refresh on Postgres NOTIFY
}

// RateLimitConfig configures per-actor cooldowns
type RateLimitConfig struct {
	Backend   string
	Intervals map[string]time.Duration
}

// RedisConfig represents Redis configuration for the shared rate limiter
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JobsConfig points at the job catalog
type JobsConfig struct {
	File  string
	Watch bool
}

// HostConfig points at the game host that owns cash and job assignments
type HostConfig struct {
	Addr       string
	Timeout    time.Duration
	Standalone bool // Keep wallet and job changes in-process
}

// Validate checks that the server has somewhere to apply wallet changes.
// Only the server needs a host; tools such as migrate do not call this.
func (h HostConfig) Validate() error {
	if h.Addr == "" && !h.Standalone {
		return fmt.Errorf("HOST_ADDR is required unless HOST_STANDALONE=true")
	}
	return nil
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string
	Development bool
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// InitConfig initializes viper configuration
// env: environment name (dev, test, prod)
func InitConfig(env string) error {
	if env == "" {
		env = "dev"
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(projectRoot)

	// Read config file (optional, ignore error if not found)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 50051)
	viper.SetDefault("METRICS_PORT", 9090)

	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "advance")
	viper.SetDefault("DB_NAME", "advance_manager")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", false)

	viper.SetDefault("CACHE_MATRIX_MAX_ENTRIES", 4096)
	viper.SetDefault("CACHE_METRICS", true)

	viper.SetDefault("DIRECTORY_RELOAD_INTERVAL", "15m")
	viper.SetDefault("DIRECTORY_ENTRY_TTL", "0s")
	viper.SetDefault("DIRECTORY_LISTEN_NOTIFY", true)

	viper.SetDefault("RATELIMIT_BACKEND", RateLimitBackendMemory)
	viper.SetDefault("RATELIMIT_INTERVALS", "")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("JOBS_FILE", "jobs.yaml")
	viper.SetDefault("JOBS_WATCH", true)

	viper.SetDefault("HOST_ADDR", "")
	viper.SetDefault("HOST_TIMEOUT", "3s")
	viper.SetDefault("HOST_STANDALONE", false)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_DEVELOPMENT", false)

	return nil
}

// Load loads configuration from viper
func Load() (*Config, error) {
	driver := viper.GetString("STORE_DRIVER")
	if driver == "" {
		driver = StoreDriverPostgres
	}
	if driver != StoreDriverPostgres && driver != StoreDriverMemory {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (expected %s or %s)", driver, StoreDriverPostgres, StoreDriverMemory)
	}

	// DB_PASSWORD is required for security
	dbPassword := viper.GetString("DB_PASSWORD")
	if driver == StoreDriverPostgres && dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required (set via environment variable or .env file)")
	}

	intervals, err := ParseRateLimitIntervals(viper.GetString("RATELIMIT_INTERVALS"))
	if err != nil {
		return nil, err
	}

	backend := viper.GetString("RATELIMIT_BACKEND")
	if backend == "" {
		backend = RateLimitBackendMemory
	}
	if backend != RateLimitBackendMemory && backend != RateLimitBackendRedis {
		return nil, fmt.Errorf("unsupported RATELIMIT_BACKEND %q", backend)
	}

	config := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("SERVER_HOST"),
			Port:        viper.GetInt("SERVER_PORT"),
			MetricsPort: viper.GetInt("METRICS_PORT"),
		},
		Database: DatabaseConfig{
			Driver:      driver,
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetInt("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    dbPassword,
			Database:    viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Cache: CacheConfig{
			MatrixMaxEntries: viper.GetInt("CACHE_MATRIX_MAX_ENTRIES"),
			Metrics:          viper.GetBool("CACHE_METRICS"),
		},
		Directory: DirectoryConfig{
			ReloadInterval: viper.GetDuration("DIRECTORY_RELOAD_INTERVAL"),
			EntryTTL:       viper.GetDuration("DIRECTORY_ENTRY_TTL"),
			ListenNotify:   viper.GetBool("DIRECTORY_LISTEN_NOTIFY"),
		},
		RateLimit: RateLimitConfig{
			Backend:   backend,
			Intervals: intervals,
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Jobs: JobsConfig{
			File:  viper.GetString("JOBS_FILE"),
			Watch: viper.GetBool("JOBS_WATCH"),
		},
		Host: HostConfig{
			Addr:       viper.GetString("HOST_ADDR"),
			Timeout:    viper.GetDuration("HOST_TIMEOUT"),
			Standalone: viper.GetBool("HOST_STANDALONE"),
		},
		Log: LogConfig{
			Level:       viper.GetString("LOG_LEVEL"),
			Development: viper.GetBool("LOG_DEVELOPMENT"),
		},
	}

	if config.Directory.ReloadInterval <= 0 {
		config.Directory.ReloadInterval = 15 * time.Minute
	}

	return config, nil
}

// ParseRateLimitIntervals merges "action=millis,action=millis" overrides onto
// DefaultRateLimitIntervals. A value of 0 removes the action's limit.
func ParseRateLimitIntervals(raw string) (map[string]time.Duration, error) {
	intervals := make(map[string]time.Duration, len(DefaultRateLimitIntervals))
	for action, d := range DefaultRateLimitIntervals {
		intervals[action] = d
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		action, value, ok := strings.Cut(pair, "=")
		action = strings.TrimSpace(action)
		if !ok || action == "" {
			return nil, fmt.Errorf("invalid RATELIMIT_INTERVALS entry %q (expected action=millis)", pair)
		}
		ms, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid RATELIMIT_INTERVALS value for %s: %q", action, value)
		}
		if ms == 0 {
			delete(intervals, action)
			continue
		}
		intervals[action] = time.Duration(ms) * time.Millisecond
	}

	return intervals, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
