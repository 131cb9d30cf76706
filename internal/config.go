package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eralp/turbonote/internal/flashcard"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeStatic   = "static"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Store     StoreConfig       `yaml:"store"`
	Auth      AuthConfig        `yaml:"auth"`
	CORS      CORSConfig        `yaml:"cors"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Gemini    GeminiConfig      `yaml:"gemini"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.RateLimit.Validate()
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

// StoreConfig holds the note store database configuration.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how callers are identified:
//   - "disabled" (default): every request is attributed to DevUser,
//     suitable for local dev.
//   - "static": Bearer tokens are resolved through the Tokens map
//     (token -> user id). Verification against a real identity
//     provider happens outside this service.
type AuthConfig struct {
	Mode    string            `yaml:"mode"`
	Tokens  map[string]string `yaml:"tokens"`
	DevUser string            `yaml:"dev_user"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeStatic)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeStatic && len(c.Tokens) == 0 {
		return fmt.Errorf("auth: mode is %q but no tokens configured", AuthModeStatic)
	}
	if c.Mode == AuthModeDisabled && c.DevUser == "" {
		return fmt.Errorf("auth: mode is %q but dev_user is empty", AuthModeDisabled)
	}
	return nil
}

// AuthEnabled returns true when token authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeStatic
}

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// RateLimitConfig holds per-IP request rate limiting configuration.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	Requests      int  `yaml:"requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Requests, validation.Required, validation.Min(1)),
		validation.Field(&c.WindowSeconds, validation.Required, validation.Min(1)),
	)
}

// Window returns the rate limit window as a duration.
func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// GeminiConfig holds the flashcard generator configuration.
type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c *GeminiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Path: "./turbonote.db",
		},
		Auth: AuthConfig{
			Mode:    AuthModeDisabled,
			DevUser: "dev-user",
		},
		CORS: CORSConfig{
			Enabled: true,
			Origins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		RateLimit: RateLimitConfig{
			Enabled:       false,
			Requests:      100,
			WindowSeconds: 600,
		},
		Gemini: GeminiConfig{
			Model:          flashcard.DefaultModel,
			BaseURL:        flashcard.DefaultBaseURL,
			TimeoutSeconds: int(flashcard.DefaultTimeout / time.Second),
		},
	}
}
