package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`
	DBPath     string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret   string `json:"jwt_secret"`
	JWTTTLHours int    `json:"jwt_ttl_hours"`

	// HTTP surface
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
	PageSize           int      `json:"page_size"`

	// Rate limiting, disabled when RedisURL is empty
	RedisURL          string `json:"redis_url"`
	RecipeCreateLimit int    `json:"recipe_create_limit"`

	SeedReferenceData bool `json:"seed_reference_data"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], RedisURL: %s, CORSAllowedOrigins: %v}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath, c.LogLevel, maskURL(c.RedisURL), c.CORSAllowedOrigins)
}

// Database builds the connection settings used by database.InitDatabase
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// maskURL masks the password in a connection URL
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if a numeric variable is malformed or a value is out of range
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "postgres" && driver != "postgresql" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	redisURL := GetEnvWithDefault("REDIS_URL", "")
	if redisURL != "" {
		if _, err := url.ParseRequestURI(redisURL); err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
	}

	pageSize := GetEnvAsType("PAGE_SIZE", 6)
	if pageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", pageSize)
	}

	config := &Config{
		Environment:        GetEnvWithDefault("APP_ENV", "development"),
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:           driver,
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBName:             GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:             GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:          GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:             GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:          GetEnvWithDefault("JWT_SECRET", "secret"),
		JWTTTLHours:        GetEnvAsType("JWT_TTL_HOURS", 24),
		CORSAllowedOrigins: splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		PageSize:           pageSize,
		RedisURL:           redisURL,
		RecipeCreateLimit:  GetEnvAsType("RECIPE_CREATE_LIMIT", 20),
		SeedReferenceData:  GetEnvAsType("SEED_REFERENCE_DATA", true),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// splitList turns a comma-separated value into its trimmed, non-empty parts
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
