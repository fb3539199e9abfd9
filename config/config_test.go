package config

import (
	"os"
	"testing"
	"time"
)

// withCleanDir runs Load from an empty directory so no stray .env or config.yaml leaks in
func withCleanDir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		withCleanDir(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Dataset.Path != "data/foods.csv" {
			t.Errorf("Dataset.Path = %s, want data/foods.csv", cfg.Dataset.Path)
		}
		if cfg.Dataset.WatchDebounce != 500*time.Millisecond {
			t.Errorf("Dataset.WatchDebounce = %v, want 500ms", cfg.Dataset.WatchDebounce)
		}
		if cfg.Matching.DefaultLimit != 5 || cfg.Matching.MaxLimit != 50 {
			t.Errorf("Matching limits = %d/%d, want 5/50", cfg.Matching.DefaultLimit, cfg.Matching.MaxLimit)
		}
		if cfg.Portion.DefaultProfile != "general" {
			t.Errorf("Portion.DefaultProfile = %s, want general", cfg.Portion.DefaultProfile)
		}
		if cfg.Database.Driver != "sqlite" {
			t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Location().String() != "Asia/Taipei" {
			t.Errorf("Location() = %s, want Asia/Taipei", cfg.Location())
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		withCleanDir(t)
		t.Setenv("NUTRIMATCH_SERVER_PORT", "9090")
		t.Setenv("NUTRIMATCH_SERVER_ENVIRONMENT", "production")
		t.Setenv("NUTRIMATCH_DATASET_PATH", "/srv/foods.csv")
		t.Setenv("NUTRIMATCH_DATASET_WATCH", "true")
		t.Setenv("NUTRIMATCH_MATCHING_DEFAULT_LIMIT", "10")
		t.Setenv("NUTRIMATCH_DATABASE_DRIVER", "postgres")
		t.Setenv("NUTRIMATCH_DATABASE_DSN", "postgres://localhost/nutrimatch")
		t.Setenv("NUTRIMATCH_CACHE_TYPE", "redis")
		t.Setenv("NUTRIMATCH_CACHE_REDIS_URL", "redis://localhost:6379")
		t.Setenv("NUTRIMATCH_CACHE_TTL", "1h")
		t.Setenv("NUTRIMATCH_RATELIMIT_PER_IP", "200")
		t.Setenv("NUTRIMATCH_SUMMARY_TIMEZONE", "UTC")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Dataset.Path != "/srv/foods.csv" {
			t.Errorf("Dataset.Path = %s, want /srv/foods.csv", cfg.Dataset.Path)
		}
		if !cfg.Dataset.Watch {
			t.Error("Dataset.Watch = false, want true")
		}
		if cfg.Matching.DefaultLimit != 10 {
			t.Errorf("Matching.DefaultLimit = %d, want 10", cfg.Matching.DefaultLimit)
		}
		if cfg.Database.Driver != "postgres" {
			t.Errorf("Database.Driver = %s, want postgres", cfg.Database.Driver)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Location() != time.UTC {
			t.Errorf("Location() = %s, want UTC", cfg.Location())
		}
	})

	t.Run("fails when redis cache has no url", func(t *testing.T) {
		withCleanDir(t)
		t.Setenv("NUTRIMATCH_CACHE_TYPE", "redis")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing redis url")
		}
	})

	t.Run("reads values from .env file", func(t *testing.T) {
		withCleanDir(t)
		if err := os.WriteFile(".env", []byte("NUTRIMATCH_SERVER_PORT=7070\n"), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("NUTRIMATCH_SERVER_PORT") })

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		withCleanDir(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		withCleanDir(t)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		if err := os.WriteFile(".env", []byte(envContent), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Cleanup(func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
			os.Unsetenv("TEST_VAR_3")
		})

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		for name, want := range map[string]string{"TEST_VAR_1": "value1", "TEST_VAR_2": "value2", "TEST_VAR_3": "value3"} {
			if got := os.Getenv(name); got != want {
				t.Errorf("%s = %s, want %s", name, got, want)
			}
		}
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		withCleanDir(t)
		t.Setenv("TEST_VAR_EXISTING", "original")

		if err := os.WriteFile(".env", []byte("TEST_VAR_EXISTING=from_file\n"), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}
		if got := os.Getenv("TEST_VAR_EXISTING"); got != "original" {
			t.Errorf("TEST_VAR_EXISTING = %s, want original", got)
		}
	})
}

func validConfig() *Config {
	return &Config{
		Dataset:  DatasetConfig{Path: "data/foods.csv"},
		Matching: MatchingConfig{DefaultLimit: 5, MaxLimit: 50},
		Summary:  SummaryConfig{Timezone: "UTC"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "nutrimatch.db"},
		Cache:    CacheConfig{Type: "memory"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"empty dataset path", func(c *Config) { c.Dataset.Path = " " }, true},
		{"zero default limit", func(c *Config) { c.Matching.DefaultLimit = 0 }, true},
		{"max below default", func(c *Config) { c.Matching.MaxLimit = 2 }, true},
		{"unknown timezone", func(c *Config) { c.Summary.Timezone = "Mars/Olympus" }, true},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"invalid cache type", func(c *Config) { c.Cache.Type = "invalid-type" }, true},
		{"redis without url", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"redis with url", func(c *Config) {
			c.Cache.Type = "redis"
			c.Cache.RedisURL = "redis://localhost:6379"
		}, false},
		{"negative rate limit", func(c *Config) { c.RateLimit.PerIP = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
