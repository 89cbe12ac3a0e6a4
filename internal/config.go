package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gameplanhq/gameplan/internal/adapter"
	"github.com/gameplanhq/gameplan/internal/agenda"
)

// ConfigFileName is the workspace configuration file, relative to the
// workspace root.
const ConfigFileName = "gameplan.yaml"

// Auth modes for the serve API.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the workspace configuration (gameplan.yaml).
type Config struct {
	App    ApplicationConfig       `yaml:"app"`
	Areas  map[string]adapter.Area `yaml:"areas"`
	Agenda AgendaConfig            `yaml:"agenda"`
	SQLite SQLiteConfig            `yaml:"sqlite"`
	Auth   AuthConfig              `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Agenda.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the serve command's HTTP configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AgendaConfig holds the ordered agenda section list.
type AgendaConfig struct {
	Sections []agenda.Section `yaml:"sections"`
}

// Validate validates the agenda configuration.
func (c *AgendaConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Sections))
	for i := range c.Sections {
		if c.Sections[i].Name == "" {
			return fmt.Errorf("agenda: section %d: name is required", i)
		}
		if _, dup := seen[c.Sections[i].Name]; dup {
			return fmt.Errorf("agenda: duplicate section name %q", c.Sections[i].Name)
		}
		seen[c.Sections[i].Name] = struct{}{}
	}
	return nil
}

// SQLiteConfig holds the history index database configuration. The path is
// relative to the workspace root unless absolute.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds serve API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 7390,
			},
		},
		SQLite: SQLiteConfig{
			Path: ".gameplan/index.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
