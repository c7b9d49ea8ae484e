package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. SHAREPLATE_DATABASE_URL.
const EnvPrefix = "SHAREPLATE"

// GoogleSecureTokenCertsURL publishes the x509 certificates Firebase uses to
// sign ID tokens.
const GoogleSecureTokenCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// DefaultAllowedOrigins are the browser origins permitted by CORS when none
// are configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"https://ephemeral-chebakia-89a6e4.netlify.app",
}

// configKeys lists every key so environment variables are bound even when
// no config file mentions them.
var configKeys = []string{
	"server.port",
	"server.log_level",
	"server.allowed_origins",
	"server.shutdown_timeout",
	"database.driver",
	"database.url",
	"database.name",
	"auth.provider",
	"auth.firebase_project_id",
	"auth.certs_url",
	"auth.jwt_secret",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.name", "foodDB")
	v.SetDefault("auth.provider", "firebase")
	v.SetDefault("auth.certs_url", GoogleSecureTokenCertsURL)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
