package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Tracking configuration (location ingestion, history, retention)
	Tracking TrackingConfig

	// NATS live location fan-out
	NATS NATSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	LogFile     string // optional rotating log file, stdout only when empty
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	Driver             string // postgres (lib/pq) or pgx
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	QueryTimeout       time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
	EnableAuditLog   bool
}

// TrackingConfig holds settings for GPS history and its retention
type TrackingConfig struct {
	HistoryDefaultLimit   int
	HistoryMaxLimit       int
	LocationRetentionDays int // 0 disables pruning
	ActivityRetentionDays int // 0 disables pruning
	RetentionSchedule     string
}

// NATSConfig holds the optional NATS publisher settings
type NATSConfig struct {
	URL           string // empty disables publishing
	SubjectPrefix string
	ClientName    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFile:     getEnv("LOG_FILE", ""),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Driver:             getEnv("DATABASE_DRIVER", "postgres"),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			QueryTimeout:       time.Duration(getEnvAsInt("DATABASE_QUERY_TIMEOUT", 10)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:   getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		Tracking: TrackingConfig{
			HistoryDefaultLimit:   getEnvAsInt("LOCATION_HISTORY_DEFAULT_LIMIT", 50),
			HistoryMaxLimit:       getEnvAsInt("LOCATION_HISTORY_MAX_LIMIT", 500),
			LocationRetentionDays: getEnvAsInt("LOCATION_RETENTION_DAYS", 0),
			ActivityRetentionDays: getEnvAsInt("ACTIVITY_LOG_RETENTION_DAYS", 0),
			// second minute hour day month weekday
			RetentionSchedule: getEnv("RETENTION_SCHEDULE", "0 30 3 * * *"),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "bus.locations"),
			ClientName:    getEnv("NATS_CLIENT_NAME", "bus-tracking-backend"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be 'postgres' or 'pgx')", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.JWT.Secret == c.JWT.RefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.Tracking.HistoryDefaultLimit <= 0 {
		return fmt.Errorf("LOCATION_HISTORY_DEFAULT_LIMIT must be positive")
	}

	if c.Tracking.HistoryMaxLimit < c.Tracking.HistoryDefaultLimit {
		return fmt.Errorf("LOCATION_HISTORY_MAX_LIMIT (%d) must be >= LOCATION_HISTORY_DEFAULT_LIMIT (%d)",
			c.Tracking.HistoryMaxLimit, c.Tracking.HistoryDefaultLimit)
	}

	if c.Tracking.LocationRetentionDays < 0 || c.Tracking.ActivityRetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}

	return nil
}

// RetentionEnabled reports whether any retention job has work to do
func (c *Config) RetentionEnabled() bool {
	return c.Tracking.LocationRetentionDays > 0 || c.Tracking.ActivityRetentionDays > 0
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
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
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
