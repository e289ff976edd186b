package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Clerk    ClerkConfig
	SMTP     SMTPConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Port           int
	HandlerTimeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

type ClerkConfig struct {
	SecretKey string
}

// SMTPConfig is optional; with an empty Host the public opt-in endpoint
// skips the confirmation mail entirely.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type LimitsConfig struct {
	MaxNewslettersPerUser int
	DirectoryCacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("missing env DATABASE_URL")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           GetEnv("PORT", 8080).(int),
			HandlerTimeout: GetEnv("HANDLER_TIMEOUT", 15*time.Second).(time.Duration),
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Clerk: ClerkConfig{
			SecretKey: GetEnv("CLERK_SECRET_KEY", "").(string),
		},
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_SERVER", "").(string),
			Port:     GetEnv("SMTP_PORT", 587).(int),
			Username: GetEnv("SMTP_USER", "").(string),
			Password: GetEnv("SMTP_PASSWORD", "").(string),
			From:     GetEnv("SMTP_FROM", "").(string),
		},
		Limits: LimitsConfig{
			MaxNewslettersPerUser: GetEnv("MAX_NEWSLETTERS_PER_USER", 10).(int),
			DirectoryCacheTTL:     GetEnv("DIRECTORY_CACHE_TTL", 5*time.Minute).(time.Duration),
		},
	}

	return cfg, nil
}

func GetEnv(key string, defaultValue any) any {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	switch def := defaultValue.(type) {
	case string:
		return value
	case int:
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		return def
	case bool:
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		return def
	case time.Duration:
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		return def
	default:
		panic(fmt.Sprintf("unsupported type %T", defaultValue))
	}
}
