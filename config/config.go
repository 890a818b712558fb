package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the operator service
type Config struct {
	Database    DatabaseConfig
	Upstream    UpstreamConfig
	Auth        AuthConfig
	Aggregation AggregationConfig
	Kafka       KafkaConfig
	Logging     LoggingConfig
	Service     ServiceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// UpstreamConfig holds session service connection settings
type UpstreamConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	RateLimit   float64
	RateBurst   int
}

// AuthConfig holds login attempt settings
type AuthConfig struct {
	ResendCooldown time.Duration
	AttemptTTL     time.Duration
	MaxAttempts    int
}

// AggregationConfig holds multi-account fetch settings
type AggregationConfig struct {
	MaxConcurrent   int
	DefaultMessages int
	MaxMessages     int
	Timezone        string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled            bool
	Brokers            []string
	TopicAccountEvents string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name            string
	Port            string
	ShutdownTimeout time.Duration
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config      *Config
	Database    *DatabaseConfig
	Upstream    *UpstreamConfig
	Auth        *AuthConfig
	Aggregation *AggregationConfig
	Kafka       *KafkaConfig
	Logging     *LoggingConfig
	Service     *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:      cfg,
		Database:    &cfg.Database,
		Upstream:    &cfg.Upstream,
		Auth:        &cfg.Auth,
		Aggregation: &cfg.Aggregation,
		Kafka:       &cfg.Kafka,
		Logging:     &cfg.Logging,
		Service:     &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	var p parser

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "operator_user"),
			Password: getEnv("DATABASE_PASSWORD", "operator_pass"),
			DBName:   getEnv("DATABASE_NAME", "operator_db"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Upstream: UpstreamConfig{
			BaseURL:     strings.TrimRight(getEnv("UPSTREAM_BASE_URL", ""), "/"),
			Timeout:     p.duration("UPSTREAM_TIMEOUT", "30s"),
			MaxAttempts: p.int("UPSTREAM_MAX_ATTEMPTS", "2"),
			RetryDelay:  p.duration("UPSTREAM_RETRY_DELAY", "2s"),
			RateLimit:   p.float("UPSTREAM_RATE_LIMIT", "10"),
			RateBurst:   p.int("UPSTREAM_RATE_BURST", "10"),
		},
		Auth: AuthConfig{
			ResendCooldown: p.duration("AUTH_CODE_RESEND_COOLDOWN", "60s"),
			AttemptTTL:     p.duration("AUTH_ATTEMPT_TTL", "15m"),
			MaxAttempts:    p.int("AUTH_MAX_ATTEMPTS", "1000"),
		},
		Aggregation: AggregationConfig{
			MaxConcurrent:   p.int("AGGREGATION_MAX_CONCURRENT", "8"),
			DefaultMessages: p.int("AGGREGATION_DEFAULT_MESSAGES", "50"),
			MaxMessages:     p.int("AGGREGATION_MAX_MESSAGES", "200"),
			Timezone:        getEnv("AGGREGATION_TIMEZONE", "Local"),
		},
		Kafka: KafkaConfig{
			Enabled:            p.bool("KAFKA_ENABLED", "false"),
			Brokers:            splitList(getEnv("KAFKA_BROKERS", "localhost:9093")),
			TopicAccountEvents: getEnv("KAFKA_TOPIC_ACCOUNT_EVENTS", "operator.account.events"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name:            getEnv("SERVICE_NAME", "operator-service"),
			Port:            getEnv("SERVICE_PORT", "8085"),
			ShutdownTimeout: p.duration("SERVICE_SHUTDOWN_TIMEOUT", "10s"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	if c.Upstream.MaxAttempts < 1 {
		return fmt.Errorf("UPSTREAM_MAX_ATTEMPTS must be at least 1")
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DATABASE_HOST is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}

	if c.Aggregation.MaxConcurrent < 1 {
		return fmt.Errorf("AGGREGATION_MAX_CONCURRENT must be at least 1")
	}

	if _, err := time.LoadLocation(c.Aggregation.Timezone); err != nil {
		return fmt.Errorf("invalid AGGREGATION_TIMEZONE: %w", err)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Location resolves the configured timezone, falling back to time.Local
func (c *AggregationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// parser collects the first conversion error so Load can report it once
type parser struct {
	err error
}

func (p *parser) duration(key, defaultValue string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}

func (p *parser) int(key, defaultValue string) int {
	v, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) float(key, defaultValue string) float64 {
	v, err := strconv.ParseFloat(getEnv(key, defaultValue), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) bool(key, defaultValue string) bool {
	v, err := strconv.ParseBool(getEnv(key, defaultValue))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
