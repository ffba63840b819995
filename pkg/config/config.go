package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data sources
	Nasdaq NasdaqConfig
	Yahoo  YahooConfig

	// Scan tuning
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NasdaqConfig holds the institutional-holdings API configuration
type NasdaqConfig struct {
	BaseURL   string
	UserAgent string
}

// YahooConfig holds the Yahoo Finance scraping configuration.
// BaseURL serves the HTML quote pages; APIBaseURL serves the chart JSON.
type YahooConfig struct {
	BaseURL    string
	APIBaseURL string
	UserAgent  string
}

// ScanConfig holds scan pipeline tuning
type ScanConfig struct {
	// Delay between consecutive ticker enrichments. Upstream sources
	// throttle bursty clients, so this is deliberate backpressure.
	RequestDelay time.Duration

	// Price below which a ticker counts toward the under-threshold bucket.
	PriceThreshold float64

	// Persistence retry policy for saving a result set.
	SaveRetries    int
	SaveRetryDelay time.Duration

	// Track State Street as a third institution alongside BlackRock
	// and Vanguard.
	TrackStateStreet bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: this is the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External data sources
		Nasdaq: NasdaqConfig{
			BaseURL:   getEnv("NASDAQ_BASE_URL", "https://api.nasdaq.com"),
			UserAgent: getEnv("NASDAQ_USER_AGENT", defaultUserAgent),
		},
		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://finance.yahoo.com"),
			APIBaseURL: getEnv("YAHOO_API_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent:  getEnv("YAHOO_USER_AGENT", defaultUserAgent),
		},

		// Scan tuning
		Scan: ScanConfig{
			RequestDelay:     getEnvAsDuration("SCAN_REQUEST_DELAY", "500ms"),
			PriceThreshold:   getEnvAsFloat("SCAN_PRICE_THRESHOLD", 2.0),
			SaveRetries:      getEnvAsInt("SCAN_SAVE_RETRIES", 3),
			SaveRetryDelay:   getEnvAsDuration("SCAN_SAVE_RETRY_DELAY", "1s"),
			TrackStateStreet: getEnvAsBool("SCAN_TRACK_STATE_STREET", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.RequestDelay < 0 {
		return fmt.Errorf("SCAN_REQUEST_DELAY must not be negative")
	}

	if c.Scan.SaveRetries < 1 {
		return fmt.Errorf("SCAN_SAVE_RETRIES must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
