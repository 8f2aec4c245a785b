package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	Storage StorageConfig
	HTTP    HTTPConfig
	Scraper ScraperConfig
	Cache   CacheConfig
	Match   MatchConfig
	Import  ImportConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// StorageConfig holds the JSON collection store settings. One file per
// collection inside DataDir.
type StorageConfig struct {
	DataDir      string
	StockFile    string
	ListingsFile string
	ImportsFile  string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
}

// ScraperConfig holds browser automation settings for the price sources
type ScraperConfig struct {
	Headless   bool
	NoSandbox  bool
	RemoteURL  string // optional remote Chrome instance
	Timeout    time.Duration
	MaxResults int // hits kept per source
	UserAgent  string
}

// CacheConfig holds the price-search cache settings
type CacheConfig struct {
	Backend string // inmemory, redis
	TTL     time.Duration
	Redis   RedisConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MatchConfig holds fuzzy matching settings
type MatchConfig struct {
	AcceptThreshold float64
}

// ImportConfig holds ad import settings
type ImportConfig struct {
	PriceFactor float64 // markup from purchase price to ask price
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LAGER_ prefix (e.g., LAGER_STORAGE_DATA_DIR)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Boolean defaults cannot be expressed in applyDefaults
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.no_sandbox", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Storage: StorageConfig{
			DataDir:      v.GetString("storage.data_dir"),
			StockFile:    v.GetString("storage.stock_file"),
			ListingsFile: v.GetString("storage.listings_file"),
			ImportsFile:  v.GetString("storage.imports_file"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Scraper: ScraperConfig{
			Headless:   v.GetBool("scraper.headless"),
			NoSandbox:  v.GetBool("scraper.no_sandbox"),
			RemoteURL:  v.GetString("scraper.remote_url"),
			Timeout:    v.GetDuration("scraper.timeout"),
			MaxResults: v.GetInt("scraper.max_results"),
			UserAgent:  v.GetString("scraper.user_agent"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
			TTL:     v.GetDuration("cache.ttl"),
			Redis: RedisConfig{
				Host:     v.GetString("cache.redis.host"),
				Port:     v.GetInt("cache.redis.port"),
				Password: v.GetString("cache.redis.password"),
				DB:       v.GetInt("cache.redis.db"),
			},
		},
		Match: MatchConfig{
			AcceptThreshold: v.GetFloat64("match.accept_threshold"),
		},
		Import: ImportConfig{
			PriceFactor: v.GetFloat64("import.price_factor"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lagerhub-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data_storage"
	}
	if cfg.Storage.StockFile == "" {
		cfg.Storage.StockFile = "stock.json"
	}
	if cfg.Storage.ListingsFile == "" {
		cfg.Storage.ListingsFile = "listings.json"
	}
	if cfg.Storage.ImportsFile == "" {
		cfg.Storage.ImportsFile = "imports.json"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Scrape-backed endpoints hold the response open while Chrome works.
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Scraper.Timeout == 0 {
		cfg.Scraper.Timeout = 30 * time.Second
	}
	if cfg.Scraper.MaxResults == 0 {
		cfg.Scraper.MaxResults = 3
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "inmemory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}
	if cfg.Cache.Redis.Host == "" {
		cfg.Cache.Redis.Host = "localhost"
	}
	if cfg.Cache.Redis.Port == 0 {
		cfg.Cache.Redis.Port = 6379
	}
	if cfg.Match.AcceptThreshold == 0 {
		cfg.Match.AcceptThreshold = 0.80
	}
	if cfg.Import.PriceFactor == 0 {
		cfg.Import.PriceFactor = 2.2
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Match.AcceptThreshold < 0 || c.Match.AcceptThreshold > 1 {
		return fmt.Errorf("match.accept_threshold must be between 0 and 1, got %f", c.Match.AcceptThreshold)
	}
	if c.Import.PriceFactor <= 0 {
		return fmt.Errorf("import.price_factor must be positive, got %f", c.Import.PriceFactor)
	}
	switch c.Cache.Backend {
	case "inmemory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'inmemory' or 'redis', got %q", c.Cache.Backend)
	}
	return nil
}

// StockPath returns the path of the stock collection file.
func (s *StorageConfig) StockPath() string {
	return filepath.Join(s.DataDir, s.StockFile)
}

// ListingsPath returns the path of the listings collection file.
func (s *StorageConfig) ListingsPath() string {
	return filepath.Join(s.DataDir, s.ListingsFile)
}

// ImportsPath returns the path of the imports collection file.
func (s *StorageConfig) ImportsPath() string {
	return filepath.Join(s.DataDir, s.ImportsFile)
}
