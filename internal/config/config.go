package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ProviderConfig struct {
	VINBaseURL   string
	PlateBaseURL string
	PlateAPIKey  string
	Timeout      time.Duration
}

type Config struct {
	Environment         string
	HTTP                HTTPConfig
	DB                  DBConfig
	Auth                AuthConfig
	Providers           ProviderConfig
	LookupRetentionDays int
}

// HistoryEnabled reports whether lookup history is on. History needs a
// database; without DB_DSN the service decodes statelessly.
func (c *Config) HistoryEnabled() bool {
	return c.DB.DSN != ""
}

// PlateEnabled reports whether the plate decode feature has an API key.
func (c *Config) PlateEnabled() bool {
	return c.Providers.PlateAPIKey != ""
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Providers: ProviderConfig{
			VINBaseURL:   v.GetString("VPIC_BASE_URL"),
			PlateBaseURL: v.GetString("PLATE_API_BASE_URL"),
			PlateAPIKey:  v.GetString("PLATE_API_KEY"),
			Timeout:      v.GetDuration("PROVIDER_TIMEOUT"),
		},
		LookupRetentionDays: v.GetInt("LOOKUP_RETENTION_DAYS"),
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Providers.VINBaseURL == "" {
		cfg.Providers.VINBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles"
	}
	if cfg.Providers.PlateBaseURL == "" {
		cfg.Providers.PlateBaseURL = "https://api.carsxe.com/platedecoder"
	}
	if cfg.Providers.Timeout == 0 {
		cfg.Providers.Timeout = 10 * time.Second
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 10
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 5
	}
	if cfg.DB.ConnMaxLifetime == 0 {
		cfg.DB.ConnMaxLifetime = 30 * time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	// The decode endpoints work without a database and without a plate
	// API key. The admin API is the only surface that needs a secret,
	// and it only exists when history does.
	if cfg.HistoryEnabled() && cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required when DB_DSN is set")
	}
	if cfg.Providers.Timeout < 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT cannot be negative")
	}
	if cfg.LookupRetentionDays < 0 {
		return fmt.Errorf("LOOKUP_RETENTION_DAYS cannot be negative")
	}
	return nil
}
