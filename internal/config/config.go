package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/Regimes/internal/database"
	"github.com/Alias1177/Regimes/internal/regime"
)

// Config holds all application configuration
type Config struct {
	TwelveAPIKey   string `yaml:"twelve_api_key"`
	Symbol         string `yaml:"symbol"`
	Interval       string `yaml:"interval"`
	CandleCount    int    `yaml:"candle_count"`
	LogLevel       string `yaml:"log_level"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds
	RequestsPerSec int    `yaml:"requests_per_sec"`
	MaxRetries     int    `yaml:"max_retries"`
	DatabaseURL    string `yaml:"database_url"`
	DBQueryTimeout int    `yaml:"db_query_timeout"` // seconds
	Workers        int    `yaml:"workers"`
	MetricsAddr    string `yaml:"metrics_addr"`

	Segment SegmentConfig `yaml:"segment"`
	Jobs    []Job         `yaml:"jobs"`
}

// SegmentConfig is the file and environment form of regime.Options
type SegmentConfig struct {
	Window      int     `yaml:"window"`
	RateUp      float64 `yaml:"rate_up"`
	RateDown    float64 `yaml:"rate_dn"`
	Future      bool    `yaml:"future"`
	ValidChange int     `yaml:"valid_change"`
	Threshold   string  `yaml:"threshold"`
}

// Job is one batch segmentation listed in the config file
type Job struct {
	Name string `yaml:"name"`
	// Source is csv, twelvedata or postgres
	Source  string        `yaml:"source"`
	Path    string        `yaml:"path"`
	Symbol  string        `yaml:"symbol"`
	Columns []string      `yaml:"columns"`
	Segment SegmentConfig `yaml:"segment"`
	Out     string        `yaml:"out"`
	Save    bool          `yaml:"save"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.Symbol = getEnvWithDefault("SYMBOL", "EUR/USD")
	cfg.Interval = getEnvWithDefault("INTERVAL", "1day")
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 500)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 3)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBQueryTimeout = getEnvIntWithDefault("DB_QUERY_TIMEOUT", 30)
	cfg.Workers = getEnvIntWithDefault("WORKERS", 0)
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.Segment = SegmentConfig{
		Window:      getEnvIntWithDefault("SEGMENT_WINDOW", 5),
		RateUp:      getEnvFloatWithDefault("SEGMENT_RATE_UP", 1),
		RateDown:    getEnvFloatWithDefault("SEGMENT_RATE_DN", 1),
		Future:      getEnvBoolWithDefault("SEGMENT_FUTURE", false),
		ValidChange: getEnvIntWithDefault("SEGMENT_VALID_CHANGE", 0),
		Threshold:   getEnvWithDefault("SEGMENT_THRESHOLD", "multiplicative"),
	}

	return &cfg, nil
}

// LoadFile overlays the YAML file at path on cfg. Keys missing from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Database returns the connection settings for DatabaseURL
func (c *Config) Database() database.Config {
	db := database.DefaultConfig()
	db.DSN = c.DatabaseURL
	if c.DBQueryTimeout > 0 {
		db.QueryTimeout = time.Duration(c.DBQueryTimeout) * time.Second
	}
	return db
}

// Options converts s to regime options; validation happens at segmentation
func (s SegmentConfig) Options() (regime.Options, error) {
	mode, err := regime.ParseThresholdMode(s.Threshold)
	if err != nil {
		return regime.Options{}, err
	}
	return regime.Options{
		Window:      s.Window,
		RateUp:      s.RateUp,
		RateDown:    s.RateDown,
		Future:      s.Future,
		Threshold:   mode,
		ValidChange: s.ValidChange,
	}, nil
}

// Merge returns s with every non-zero field of o applied on top
func (s SegmentConfig) Merge(o SegmentConfig) SegmentConfig {
	if o.Window != 0 {
		s.Window = o.Window
	}
	if o.RateUp != 0 {
		s.RateUp = o.RateUp
	}
	if o.RateDown != 0 {
		s.RateDown = o.RateDown
	}
	if o.Future {
		s.Future = true
	}
	if o.ValidChange != 0 {
		s.ValidChange = o.ValidChange
	}
	if o.Threshold != "" {
		s.Threshold = o.Threshold
	}
	return s
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
