// Package config provides configuration management for the oddsmesh service.
package config

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Providers   []ProviderConfig  `mapstructure:"providers" validate:"required,min=1,dive"`
	Aggregation AggregationConfig `mapstructure:"aggregation" validate:"required"`
	API         APIConfig         `mapstructure:"api" validate:"required"`
	Store       StoreConfig       `mapstructure:"store" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	Health      HealthConfig      `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ProviderConfig represents a single upstream odds provider
type ProviderConfig struct {
	ID               string  `mapstructure:"id" validate:"required"`
	Name             string  `mapstructure:"name" validate:"required"`
	Kind             string  `mapstructure:"kind" validate:"required,providerkind"`
	Enabled          bool    `mapstructure:"enabled"`
	Weight           int     `mapstructure:"weight" validate:"gte=0,lte=100"`
	APIKey           string  `mapstructure:"api_key"`
	BaseURL          string  `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	StalenessSeconds int     `mapstructure:"staleness_seconds" validate:"omitempty,gt=0"`
	RateLimit        float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// AggregationConfig represents the refresh loop configuration
type AggregationConfig struct {
	RefreshIntervalSeconds int `mapstructure:"refresh_interval_seconds" validate:"required,gt=0"`
}

// APIConfig represents the HTTP API server configuration
type APIConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects the key-value store backing adapter response caches
type StoreConfig struct {
	Backend  string         `mapstructure:"backend" validate:"required,oneof=memory postgres"`
	Postgres DatabaseConfig `mapstructure:"postgres"`
}

// DatabaseConfig represents Postgres connection configuration, used only
// when the store backend is "postgres"
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Provider returns the configuration for a provider by id
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
