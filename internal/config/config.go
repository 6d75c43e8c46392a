package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/invoice"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Config is the process configuration read from the environment.
type Config struct {
	Port        string
	StoreDriver string
	MongoURI    string
	MongoDB     string

	JWTSecret string
	JWTExpiry time.Duration

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string

	LogLevel  log.Level
	LogFormat string

	VarianceMode invoice.VarianceMode

	// Optional first user, created at startup if missing.
	AdminUsername string
	AdminPassword string
	AdminTenantID string
}

// Load reads an optional .env file, then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:            get("PORT", "8080"),
		StoreDriver:     get("STORE_DRIVER", DriverMongo),
		MongoURI:        getenv("MONGO_URI"),
		MongoDB:         get("MONGO_DB", "fleet_maintenance"),
		JWTSecret:       get("JWT_SECRET", defaultJWTSecret),
		MQTTBrokerURL:   getenv("MQTT_BROKER_URL"),
		MQTTClientID:    get("MQTT_CLIENT_ID", "fleet-maintenance"),
		MQTTTopicPrefix: get("MQTT_TOPIC_PREFIX", "fleet/maintenance"),
		LogFormat:       get("LOG_FORMAT", "text"),
		AdminUsername:   getenv("ADMIN_USERNAME"),
		AdminPassword:   getenv("ADMIN_PASSWORD"),
		AdminTenantID:   getenv("ADMIN_TENANT_ID"),
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	exp, err := time.ParseDuration(get("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRY: %w", err)
	}
	if exp <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY: must be positive, got %s", exp)
	}
	cfg.JWTExpiry = exp

	level, err := log.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}

	mode, err := invoice.ParseVarianceMode(getenv("COST_VARIANCE_MODE"))
	if err != nil {
		return nil, fmt.Errorf("COST_VARIANCE_MODE: %w", err)
	}
	cfg.VarianceMode = mode

	if cfg.AdminUsername != "" && (cfg.AdminPassword == "" || cfg.AdminTenantID == "") {
		return nil, errors.New("ADMIN_USERNAME requires ADMIN_PASSWORD and ADMIN_TENANT_ID")
	}
	return cfg, nil
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// NewLogger builds the process logger.
func (c *Config) NewLogger() *log.Logger {
	logger := log.New()
	logger.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}
