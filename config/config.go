package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	SPAPI       SPAPIConfig       `mapstructure:"spapi"`
	Keepa       KeepaConfig       `mapstructure:"keepa"`
	SellerCache SellerCacheConfig `mapstructure:"seller_cache"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Pacing      PacingConfig      `mapstructure:"pacing"`
	Search      SearchConfig      `mapstructure:"search"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SPAPIConfig holds Selling Partner API credentials and endpoint settings
type SPAPIConfig struct {
	ClientID          string  `mapstructure:"client_id"`
	ClientSecret      string  `mapstructure:"client_secret"`
	RefreshToken      string  `mapstructure:"refresh_token"`
	Endpoint          string  `mapstructure:"endpoint"`
	TokenURL          string  `mapstructure:"token_url"`
	MarketplaceID     string  `mapstructure:"marketplace_id"`
	Currency          string  `mapstructure:"currency"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// KeepaConfig holds the seller name lookup credential. An empty APIKey disables lookups.
type KeepaConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Domain  int    `mapstructure:"domain"`
}

// SellerCacheConfig holds seller name cache persistence settings
type SellerCacheConfig struct {
	Type string `mapstructure:"type"` // "memory", "file" or "sqlite"
	Path string `mapstructure:"path"`
}

// RetryConfig holds throttle backoff settings
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	JitterMin   time.Duration `mapstructure:"jitter_min"`
	JitterMax   time.Duration `mapstructure:"jitter_max"`
}

// PacingConfig holds the fixed delays inserted before remote calls
type PacingConfig struct {
	OfferDelay      time.Duration `mapstructure:"offer_delay"`
	FeeDelay        time.Duration `mapstructure:"fee_delay"`
	SearchPageDelay time.Duration `mapstructure:"search_page_delay"`
}

// SearchConfig holds keyword search defaults
type SearchConfig struct {
	DefaultMaxResults int `mapstructure:"default_max_results"`
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
	v.AddConfigPath("/etc/shelfscout/")

	// Environment variable settings
	v.SetEnvPrefix("SHELFSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
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

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key is registered here so
// AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// SP-API defaults (Amazon JP)
	v.SetDefault("spapi.client_id", "")
	v.SetDefault("spapi.client_secret", "")
	v.SetDefault("spapi.refresh_token", "")
	v.SetDefault("spapi.endpoint", "https://sellingpartnerapi-fe.amazon.com")
	v.SetDefault("spapi.token_url", "https://api.amazon.com/auth/o2/token")
	v.SetDefault("spapi.marketplace_id", "A1VC38T7YXB528")
	v.SetDefault("spapi.currency", "JPY")
	v.SetDefault("spapi.requests_per_second", 2.0)
	v.SetDefault("spapi.burst", 2)

	// Keepa defaults (domain 5 = co.jp)
	v.SetDefault("keepa.api_key", "")
	v.SetDefault("keepa.base_url", "https://api.keepa.com")
	v.SetDefault("keepa.domain", 5)

	// Seller cache defaults
	v.SetDefault("seller_cache.type", "file")
	v.SetDefault("seller_cache.path", "seller_cache.json")

	// Retry defaults
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.base_delay", "2s")
	v.SetDefault("retry.jitter_min", "500ms")
	v.SetDefault("retry.jitter_max", "1500ms")

	// Pacing defaults
	v.SetDefault("pacing.offer_delay", "1s")
	v.SetDefault("pacing.fee_delay", "500ms")
	v.SetDefault("pacing.search_page_delay", "1s")

	v.SetDefault("search.default_max_results", 50)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.SPAPI.ClientID == "" || config.SPAPI.ClientSecret == "" || config.SPAPI.RefreshToken == "" {
		return fmt.Errorf("SP-API credentials are required (set SHELFSCOUT_SPAPI_CLIENT_ID, SHELFSCOUT_SPAPI_CLIENT_SECRET, SHELFSCOUT_SPAPI_REFRESH_TOKEN)")
	}

	if config.SPAPI.MarketplaceID == "" {
		return fmt.Errorf("SP-API marketplace id is required")
	}

	if config.SPAPI.RequestsPerSecond <= 0 {
		return fmt.Errorf("spapi.requests_per_second must be positive, got: %v", config.SPAPI.RequestsPerSecond)
	}

	switch config.SellerCache.Type {
	case "memory":
	case "file", "sqlite":
		if config.SellerCache.Path == "" {
			return fmt.Errorf("seller cache path is required when cache type is '%s'", config.SellerCache.Type)
		}
	default:
		return fmt.Errorf("seller cache type must be 'memory', 'file' or 'sqlite', got: %s", config.SellerCache.Type)
	}

	if config.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got: %d", config.Retry.MaxAttempts)
	}

	if config.Retry.JitterMax < config.Retry.JitterMin {
		return fmt.Errorf("retry.jitter_max (%s) must not be below retry.jitter_min (%s)", config.Retry.JitterMax, config.Retry.JitterMin)
	}

	if config.Search.DefaultMaxResults < 1 {
		return fmt.Errorf("search.default_max_results must be at least 1, got: %d", config.Search.DefaultMaxResults)
	}

	return nil
}
