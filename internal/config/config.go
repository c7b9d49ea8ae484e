package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"  validate:"required,min=1,dive,url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the document store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo"`
	URL    string `mapstructure:"url"    validate:"required,url"`
	// Name is the MongoDB database holding the foods and requests collections.
	Name string `mapstructure:"name" validate:"required_if=Driver mongo"`
}

// AuthConfig contains all authentication settings.
type AuthConfig struct {
	// Provider selects the bearer token verifier: Firebase ID tokens in
	// production, locally minted HMAC tokens in development.
	Provider          string `mapstructure:"provider"            validate:"required,oneof=firebase hmac"`
	FirebaseProjectID string `mapstructure:"firebase_project_id" validate:"required_if=Provider firebase"`
	CertsURL          string `mapstructure:"certs_url"           validate:"required,url"`
	JWTSecret         string `mapstructure:"jwt_secret"          validate:"required_if=Provider hmac,omitempty,min=32"`
}
