package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"weatherdash.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	Weather  WeatherConfig  `split_words:"true"`
	Cache    CacheConfig    `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains durable store connection settings. The sqlite
// path is used unless a postgres driver is selected.
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"weatherdash.db"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DB_NAME" default:"weatherdash"`
	SSLMode    string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted postgres connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// WeatherConfig contains settings for the upstream weather providers.
// An empty OpenWeather key disables that provider for the process
// lifetime; Open-Meteo needs no credential and is always available.
type WeatherConfig struct {
	OpenWeatherAPIKey  string `envconfig:"OPENWEATHER_API_KEY"`
	OpenWeatherBaseURL string `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org"`
	OpenMeteoBaseURL   string `envconfig:"OPENMETEO_BASE_URL" default:"https://api.open-meteo.com"`
	GeocodeBaseURL     string `envconfig:"GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	GeocodeUserAgent   string `envconfig:"GEOCODE_USER_AGENT" default:"WeatherDashboard/1.0"`
	RequestTimeoutSecs int    `envconfig:"WEATHER_REQUEST_TIMEOUT" default:"10"`
	CacheTTLMinutes    int    `envconfig:"WEATHER_CACHE_TTL" default:"15"`
	FallbackCity       string `envconfig:"WEATHER_FALLBACK_CITY" default:"Nairobi"`
}

// CacheConfig selects the durable key-value store backing the freshness
// cache and user state
type CacheConfig struct {
	Type          string `envconfig:"CACHE_TYPE" default:"database"`
	RedisAddr     string `envconfig:"CACHE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"CACHE_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"CACHE_REDIS_DB" default:"0"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks durable store configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.SQLitePath == "" {
			return errors.NewConfigurationError("DB_SQLITE_PATH cannot be empty", nil)
		}
	case "postgres":
		if d.Host == "" {
			return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
		}
		if d.Port < 1 || d.Port > 65535 {
			return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
		}
		if d.User == "" {
			return errors.NewConfigurationError("DB_USER cannot be empty", nil)
		}
		if d.Name == "" {
			return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
		}
		if err := d.ValidateSSLMode(); err != nil {
			return err
		}
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: sqlite, postgres", nil)
	}
	return nil
}

// Validate checks weather provider configuration
func (w *WeatherConfig) Validate() error {
	for name, baseURL := range map[string]string{
		"OPENWEATHER_BASE_URL": w.OpenWeatherBaseURL,
		"OPENMETEO_BASE_URL":   w.OpenMeteoBaseURL,
		"GEOCODE_BASE_URL":     w.GeocodeBaseURL,
	} {
		if baseURL == "" {
			return errors.NewConfigurationError(name+" cannot be empty", nil)
		}
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
		}
	}
	if w.RequestTimeoutSecs < 1 {
		return errors.NewConfigurationError("WEATHER_REQUEST_TIMEOUT must be at least 1 second", nil)
	}
	if w.CacheTTLMinutes < 1 {
		return errors.NewConfigurationError("WEATHER_CACHE_TTL must be at least 1 minute", nil)
	}
	if w.FallbackCity == "" {
		return errors.NewConfigurationError("WEATHER_FALLBACK_CITY cannot be empty", nil)
	}
	return nil
}

// Validate checks cache store configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "database", "memory":
		return nil
	case "redis":
		if c.RedisAddr == "" {
			return errors.NewConfigurationError("CACHE_REDIS_ADDR cannot be empty", nil)
		}
		return nil
	default:
		return errors.NewConfigurationError("CACHE_TYPE must be one of: database, redis, memory", nil)
	}
}
