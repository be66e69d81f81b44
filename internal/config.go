package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Store  StoreConfig       `yaml:"store"`
	AI     AIConfig          `yaml:"ai"`
	Limits LimitsConfig      `yaml:"limits"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if err := c.Limits.Validate(); err != nil {
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

// StoreConfig holds the on-disk layout: learning notes, the quiz
// database and the upload directory.
type StoreConfig struct {
	NotesDir   string `yaml:"notes_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	UploadsDir string `yaml:"uploads_dir"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesDir, validation.Required),
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.UploadsDir, validation.Required),
	)
}

// AIConfig selects and configures the generative-AI backend.
type AIConfig struct {
	Provider          string `yaml:"provider"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderOpenAI, ProviderGemini)),
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.RequestsPerMinute, validation.Min(0), validation.Max(600)),
	)
}

// LimitsConfig bounds how much source text reaches the model and the
// note store. Zero values fall back to the defaults at load time.
type LimitsConfig struct {
	MaxSourceChars     int `yaml:"max_source_chars"`
	MaxPagePromptChars int `yaml:"max_page_prompt_chars"`
	MaxPageTextChars   int `yaml:"max_page_text_chars"`
}

// Validate validates the limits configuration.
func (c *LimitsConfig) Validate() error {
	if c.MaxSourceChars == 0 {
		c.MaxSourceChars = 8000
	}
	if c.MaxPagePromptChars == 0 {
		c.MaxPagePromptChars = 3500
	}
	if c.MaxPageTextChars == 0 {
		c.MaxPageTextChars = 6000
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSourceChars, validation.Min(100)),
		validation.Field(&c.MaxPagePromptChars, validation.Min(100)),
		validation.Field(&c.MaxPageTextChars, validation.Min(100)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
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
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			NotesDir:   "./data/notes",
			SQLitePath: "./data/lectio.db",
			UploadsDir: "./data/uploads",
		},
		AI: AIConfig{
			Provider:          ProviderOpenAI,
			Model:             "gpt-5-mini",
			RequestsPerMinute: 30,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
