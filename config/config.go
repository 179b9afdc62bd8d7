package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Search    SearchConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig describes where the product catalog comes from and how
// often it is reloaded
type CatalogConfig struct {
	Source            string        `mapstructure:"source"` // "http" or "file"
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Table             string        `mapstructure:"table"`
	FilePath          string        `mapstructure:"file_path"`
	PageSize          int           `mapstructure:"page_size"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// SearchConfig holds ranking and result-shaping settings
type SearchConfig struct {
	DefaultLimit    int `mapstructure:"default_limit"`
	MaxResults      int `mapstructure:"max_results"`
	SuggestDistance int `mapstructure:"suggest_distance"`
	SuggestLimit    int `mapstructure:"suggest_limit"`
	PrepareWorkers  int `mapstructure:"prepare_workers"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // only "memory"
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from a .env file, environment variables and
// config files
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
	v.AddConfigPath("/etc/storefront/")

	// STOREFRONT_CATALOG_BASE_URL -> catalog.base_url
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment. A missing file is
// not an error and variables that are already set win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Catalog defaults
	v.SetDefault("catalog.source", "http")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.table", "products")
	v.SetDefault("catalog.file_path", "")
	v.SetDefault("catalog.page_size", 1000)
	v.SetDefault("catalog.refresh_interval", "5m")
	v.SetDefault("catalog.timeout", "30s")
	v.SetDefault("catalog.requests_per_second", 5)

	// Search defaults
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_results", 100)
	v.SetDefault("search.suggest_distance", 2)
	v.SetDefault("search.suggest_limit", 5)
	v.SetDefault("search.prepare_workers", 4)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case "http":
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required (set STOREFRONT_CATALOG_BASE_URL)")
		}
		if config.Catalog.APIKey == "" {
			return fmt.Errorf("catalog API key is required (set STOREFRONT_CATALOG_API_KEY)")
		}
	case "file":
		if config.Catalog.FilePath == "" {
			return fmt.Errorf("catalog file path is required when source is 'file'")
		}
	default:
		return fmt.Errorf("catalog source must be 'http' or 'file', got: %s", config.Catalog.Source)
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.Search.DefaultLimit <= 0 || config.Search.MaxResults <= 0 {
		return fmt.Errorf("search limits must be positive")
	}
	if config.Search.DefaultLimit > config.Search.MaxResults {
		return fmt.Errorf("search default limit %d exceeds max results %d",
			config.Search.DefaultLimit, config.Search.MaxResults)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("per-IP rate limit must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
