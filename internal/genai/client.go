// Package genai wraps the external generative-text service behind a
// small text-in/text-out client interface so the pipeline can swap
// providers (and tests can substitute fakes).
package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectio/lectio/internal/apperr"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Client is one request/response exchange with the generative service.
// Implementations return the raw model text; callers must parse it
// defensively.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures the backing provider.
type Config struct {
	Provider          string
	Model             string
	APIKey            string
	RequestsPerMinute int
}

// New builds the configured provider wrapped with rate limiting and
// response cleanup. The returned client is safe for concurrent use and
// lives for the whole process.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}

	var backend Client
	switch cfg.Provider {
	case ProviderOpenAI:
		backend = newOpenAI(cfg.APIKey, cfg.Model)
	case ProviderGemini:
		backend = newGemini(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("genai: unknown provider %q", cfg.Provider)
	}

	return &client{backend: rateLimited(backend, cfg.RequestsPerMinute)}, nil
}

// client normalizes provider output: code-fence decoration is stripped
// and an empty response is treated as a remote failure.
type client struct {
	backend Client
}

func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	raw, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrRemote, err)
	}
	text := StripFences(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", apperr.ErrRemote)
	}
	return text, nil
}

// StripFences removes Markdown code-fence decoration that models wrap
// around JSON payloads, and trims surrounding whitespace.
func StripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
