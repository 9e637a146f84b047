// Package config loads server configuration from an optional yoxo-config
// JSON file and the environment.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port string `mapstructure:"port"`
	// Environment is "development" or "production"; it controls gin mode and
	// CORS strictness.
	Environment string `mapstructure:"environment"`
	// DatabaseURL is the Postgres DSN. When empty the server falls back to
	// the in-memory store.
	DatabaseURL string `mapstructure:"database_url"`
	// AllowedOrigins lists CORS origins accepted in production.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AdviceServiceURL is the completion endpoint root; empty disables
	// enrichment entirely.
	AdviceServiceURL string `mapstructure:"advice_service_url"`
	// AdviceServiceKey is the bearer token for the advice service.
	AdviceServiceKey string `mapstructure:"advice_service_key"`
	// AdviceTimeout bounds each enrichment call.
	AdviceTimeout time.Duration `mapstructure:"advice_timeout"`

	// IntakeSessionTTL is how long an abandoned intake session is resumable.
	IntakeSessionTTL time.Duration `mapstructure:"intake_session_ttl"`
	// IntakeMaxSessions bounds concurrently tracked intake sessions.
	IntakeMaxSessions int `mapstructure:"intake_max_sessions"`
}

// Load reads yoxo-config.json from $HOME or the working directory when
// present, then applies YOXO_* environment overrides. A missing config file
// is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("yoxo-config")
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetEnvPrefix("YOXO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("advice_timeout", 5*time.Second)
	v.SetDefault("intake_session_ttl", 24*time.Hour)
	v.SetDefault("intake_max_sessions", 4096)

	// Legacy, unprefixed variable names kept for deployment compatibility.
	_ = v.BindEnv("port", "YOXO_PORT", "PORT")
	_ = v.BindEnv("database_url", "YOXO_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("advice_service_url", "YOXO_ADVICE_SERVICE_URL", "DIFY_API_URL")
	_ = v.BindEnv("advice_service_key", "YOXO_ADVICE_SERVICE_KEY", "DIFY_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}
