// Package llm wraps hosted chat-completion models behind one interface.
package llm

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// Provider sends one chat request and returns the single completion text.
// Implementations make exactly one attempt per call.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Model() string
	Close() error
}

var (
	ErrMissingAPIKey   = errors.New("llm: api key not configured")
	ErrEmptyCompletion = errors.New("llm: empty completion")
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// DefaultModel is the OpenAI model used when none is configured.
const DefaultModel = "gpt-4.1-mini"

// Default models for the other providers.
const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// Config selects and configures a provider.
type Config struct {
	Provider string // openai, anthropic or gemini
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the configured provider. A missing API key is not an error
// here; the provider reports ErrMissingAPIKey on first use.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		cfg.Model = cmp.Or(cfg.Model, DefaultModel)
		return NewOpenAI(cfg), nil
	case "anthropic":
		cfg.Model = cmp.Or(cfg.Model, DefaultAnthropicModel)
		return NewAnthropic(cfg), nil
	case "gemini":
		cfg.Model = cmp.Or(cfg.Model, DefaultGeminiModel)
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// APIError is a non-success response from a provider's HTTP API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// splitSystem separates system instructions from the conversation for APIs
// that take them as a dedicated field.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
