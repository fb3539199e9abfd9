package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix prefixes every environment variable, e.g. NUTRIMATCH_SERVER_PORT
const envPrefix = "NUTRIMATCH"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Matching  MatchingConfig
	Portion   PortionConfig
	Summary   SummaryConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatasetConfig locates the nutrient dataset and the curated synonym table
type DatasetConfig struct {
	Path          string        `mapstructure:"path"`
	SynonymsPath  string        `mapstructure:"synonyms_path"` // empty uses the built-in table
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// MatchingConfig holds resolve limits
type MatchingConfig struct {
	DefaultLimit int  `mapstructure:"default_limit"`
	MaxLimit     int  `mapstructure:"max_limit"`
	DebugLogging bool `mapstructure:"debug_logging"`
}

// PortionConfig holds portion estimation settings
type PortionConfig struct {
	DefaultProfile string `mapstructure:"default_profile"`
}

// SummaryConfig holds daily bucketing settings
type SummaryConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// DatabaseConfig holds meal storage settings
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	Debug        bool   `mapstructure:"debug"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type      string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL  string        `mapstructure:"redis_url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Mode string `mapstructure:"mode"` // "production" or "development"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutrimatch/")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports the variables of ./.env that are not already set.
// A missing file is not an error.
func loadEnvFile() error {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8501"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Dataset defaults
	v.SetDefault("dataset.path", "data/foods.csv")
	v.SetDefault("dataset.synonyms_path", "")
	v.SetDefault("dataset.watch", false)
	v.SetDefault("dataset.watch_debounce", "500ms")

	// Matching defaults
	v.SetDefault("matching.default_limit", 5)
	v.SetDefault("matching.max_limit", 50)
	v.SetDefault("matching.debug_logging", false)

	// Portion and summary defaults
	v.SetDefault("portion.default_profile", "general")
	v.SetDefault("summary.timezone", "Asia/Taipei")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "nutrimatch.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.debug", false)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.key_prefix", "nutrimatch:")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	// Log defaults
	v.SetDefault("log.mode", "development")
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Dataset.Path) == "" {
		return fmt.Errorf("dataset path is required (set %s_DATASET_PATH)", envPrefix)
	}

	if config.Matching.DefaultLimit < 1 || config.Matching.MaxLimit < config.Matching.DefaultLimit {
		return fmt.Errorf("matching limits must satisfy 1 <= default_limit <= max_limit, got %d and %d",
			config.Matching.DefaultLimit, config.Matching.MaxLimit)
	}

	if _, err := time.LoadLocation(config.Summary.Timezone); err != nil {
		return fmt.Errorf("unknown summary timezone %q: %w", config.Summary.Timezone, err)
	}

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database driver must be 'sqlite' or 'postgres', got: %s", config.Database.Driver)
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required (set %s_DATABASE_DSN)", envPrefix)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}

// Location returns the timezone used for daily summaries
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Summary.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
