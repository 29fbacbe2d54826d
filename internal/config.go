package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	API         APIConfig         `yaml:"api"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Fallback    FallbackConfig    `yaml:"fallback"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	DevServer   DevServerConfig   `yaml:"dev_server"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.DevServer.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return nil
}

// APIConfig holds the CMS API endpoint. BaseURL is resolved once at process
// start; all relative request paths are resolved against it.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// CredentialsConfig holds the token store location. An empty path selects
// the per-user default.
type CredentialsConfig struct {
	Path string `yaml:"path"`
}

// FallbackConfig controls the public-read fallback content.
type FallbackConfig struct {
	// Disabled switches the public reader to hard empty results when the
	// backend is unreachable.
	Disabled bool `yaml:"disabled"`
}

// PostgresConfig holds the optional direct-database backend. When DSN is
// set, content operations bypass the REST API and address Postgres
// directly.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Enabled reports whether the Postgres backend is configured.
func (c *PostgresConfig) Enabled() bool {
	return c.DSN != ""
}

// DevServerConfig holds the local backend configuration.
type DevServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	// SQLitePath is the content database file.
	SQLitePath string `yaml:"sqlite_path"`
	// SeedPath, when set, is a directory of JSON fixtures loaded at start
	// and watched for changes.
	SeedPath string `yaml:"seed_path"`
	// TokenSecret signs the bearer tokens the dev server issues.
	TokenSecret string `yaml:"token_secret"`
}

// Validate validates the dev server configuration.
func (c *DevServerConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.TokenSecret, validation.Required),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		API: APIConfig{
			BaseURL: "http://localhost:3000",
		},
		DevServer: DevServerConfig{
			HTTP:        HTTPConfig{Port: 3000},
			SQLitePath:  "./ansuz.db",
			TokenSecret: "dev-secret-change-me",
		},
	}
}
