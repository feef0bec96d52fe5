package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes for the review server.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Arc    ArcConfig         `yaml:"arc"`
	Zen    ZenConfig         `yaml:"zen"`
	Import ImportConfig      `yaml:"import"`
	Review ReviewConfig      `yaml:"review"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Import.Validate(); err != nil {
		return err
	}
	return c.Review.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ArcConfig locates the source browser's data. Empty paths fall back to the
// platform defaults at run time.
type ArcConfig struct {
	SidebarPath string `yaml:"sidebar_path"`
	HistoryPath string `yaml:"history_path"`
}

// ZenConfig locates the target browser profile. An empty profile selects the
// default one from profiles.ini.
type ZenConfig struct {
	Root    string `yaml:"root"`
	Profile string `yaml:"profile"`
}

// ImportConfig holds the import-run options.
type ImportConfig struct {
	MinVisitCount int    `yaml:"min_visit_count"`
	BackupDir     string `yaml:"backup_dir"`
	Bookmarks     bool   `yaml:"bookmarks"`
	SetActive     bool   `yaml:"set_active"`
}

// Validate validates the import configuration.
func (c *ImportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinVisitCount, validation.Min(0)),
	)
}

// ReviewConfig holds the review server configuration.
type ReviewConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	Auth AuthConfig `yaml:"auth"`
}

// Validate validates the review configuration.
func (c *ReviewConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration for the review server.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Import: ImportConfig{
			Bookmarks: true,
			SetActive: true,
		},
		Review: ReviewConfig{
			HTTP: HTTPConfig{Port: 8321},
			Auth: AuthConfig{Mode: AuthModeDisabled},
		},
	}
}
