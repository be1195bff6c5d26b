package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no credential is available for the
// selected backend.
var ErrNotConfigured = errors.New("language model backend not configured")

// Role tags a turn of the dialogue
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is a single role-tagged entry of a dialogue
type Turn struct {
	Role Role
	Text string
}

// Completer sends an ordered dialogue to a language model and returns the
// text of its reply. An empty string with a nil error means the model
// answered with an empty body.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
	Name() string
}

// Config holds the settings needed to build a backend
type Config struct {
	Model     string
	OpenAIKey string
	OpenAIURL string // Optional base URL override, e.g. for a proxy
	GeminiKey string
	GeminiURL string // Optional base URL override
	MaxTokens int
	Timeout   time.Duration
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() *Config {
	return &Config{
		Model:     "gpt-4o",
		MaxTokens: 800,
		Timeout:   20 * time.Second,
	}
}

// IsGeminiModel reports whether the model id belongs to the Gemini family
func IsGeminiModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "gemini-")
}

// New creates the backend matching the configured model
func New(ctx context.Context, config *Config) (Completer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if IsGeminiModel(config.Model) {
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrNotConfigured)
		}
		return NewGemini(ctx, config)
	}

	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}
	return NewOpenAI(config), nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
