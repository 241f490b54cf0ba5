package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sellmypi/internal/models"
	libconfig "sellmypi/libs/config"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config defines the sellmypi service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SELLMYPI_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		Backend string `yaml:"backend" env:"SELLMYPI_STORE_BACKEND"`
		DSN     string `yaml:"dsn" env:"SELLMYPI_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr" env:"SELLMYPI_REDIS_ADDR"`
		Password string        `yaml:"password" env:"SELLMYPI_REDIS_PASSWORD"`
		DB       int           `yaml:"db" env:"SELLMYPI_REDIS_DB"`
		StatsTTL time.Duration `yaml:"stats_ttl" env:"SELLMYPI_STATS_TTL"`
	} `yaml:"redis"`
	JWT struct {
		Secret string `yaml:"secret" env:"SELLMYPI_JWT_SECRET"`
	} `yaml:"jwt"`
	ImageStore struct {
		BaseURL string        `yaml:"base_url" env:"SELLMYPI_IMAGESTORE_URL"`
		Timeout time.Duration `yaml:"timeout" env:"SELLMYPI_IMAGESTORE_TIMEOUT"`
	} `yaml:"image_store"`
	Stats struct {
		// Realized is the comma-separated status set counted toward
		// monetary totals.
		Realized string `yaml:"realized" env:"SELLMYPI_REALIZED_STATUSES"`
	} `yaml:"stats"`
}

// Load configuration from file/env and validate it.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Database.Backend = BackendPostgres
	cfg.Redis.StatsTTL = 30 * time.Second
	cfg.ImageStore.Timeout = 10 * time.Second
	cfg.Stats.Realized = string(models.StatusCompleted)

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	switch cfg.Database.Backend {
	case BackendPostgres:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return nil, errors.New("config: database dsn required for postgres backend")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Database.Backend)
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if _, err := cfg.RealizedStatuses(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns a :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// RealizedStatuses parses the configured realized status set.
func (c *Config) RealizedStatuses() ([]models.Status, error) {
	var statuses []models.Status
	for _, raw := range strings.Split(c.Stats.Realized, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		status := models.Status(raw)
		if !models.KnownStatus(status) {
			return nil, fmt.Errorf("config: unknown realized status %q", raw)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
