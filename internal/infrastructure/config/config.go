package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Notify   NotifyConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int // Port for Prometheus metrics HTTP server
}

// AuthConfig represents token signing configuration
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// CacheConfig represents schema cache configuration
type CacheConfig struct {
	Enabled    bool
	TTLMinutes int // Time-to-live for cached schemas in minutes
}

// NotifyConfig represents the realtime change feed configuration
type NotifyConfig struct {
	Enabled bool
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree until we find go.mod
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the root directory
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// InitConfig initializes viper configuration
// env: environment name (dev, test, prod)
func InitConfig(env string) error {
	if env == "" {
		env = "dev"
	}

	// Find project root
	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	// Set config file name based on environment
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(projectRoot) // Project root

	// Read config file (optional, ignore error if not found)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("METRICS_PORT", 9090)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 15432)
	viper.SetDefault("DB_USER", "garrison")
	viper.SetDefault("DB_NAME", "garrison_dev")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("TOKEN_TTL_MINUTES", 720)

	// Schema cache defaults
	viper.SetDefault("SCHEMA_CACHE_ENABLED", true)
	viper.SetDefault("SCHEMA_CACHE_TTL_MINUTES", 5)

	// Realtime change feed
	viper.SetDefault("NOTIFY_ENABLED", true)

	return nil
}

// Load loads configuration from viper
func Load() (*Config, error) {
	// DB_PASSWORD is required for security
	dbPassword := viper.GetString("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required (set via environment variable or .env file)")
	}

	// Tokens are unusable without a signing secret
	jwtSecret := viper.GetString("AUTH_JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required (set via environment variable or .env file)")
	}

	config := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("SERVER_HOST"),
			Port:        viper.GetInt("SERVER_PORT"),
			MetricsPort: viper.GetInt("METRICS_PORT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: dbPassword,
			Database: viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Auth: AuthConfig{
			JWTSecret:       jwtSecret,
			TokenTTLMinutes: viper.GetInt("TOKEN_TTL_MINUTES"),
		},
		Cache: CacheConfig{
			Enabled:    viper.GetBool("SCHEMA_CACHE_ENABLED"),
			TTLMinutes: viper.GetInt("SCHEMA_CACHE_TTL_MINUTES"),
		},
		Notify: NotifyConfig{
			Enabled: viper.GetBool("NOTIFY_ENABLED"),
		},
	}

	return config, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
