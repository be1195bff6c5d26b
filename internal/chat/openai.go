package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAI implements Completer using the chat completions API
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAI creates a new OpenAI chat backend
func NewOpenAI(config *Config) *OpenAI {
	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIURL != "" {
		clientConfig.BaseURL = config.OpenAIURL
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     config.Model,
		maxTokens: maxTokens,
		timeout:   config.Timeout,
	}
}

// IsReasoningModel reports whether the model belongs to the o-series, which
// rejects temperature and max_tokens and wants max_completion_tokens instead.
func IsReasoningModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "o")
}

// buildRequest prepares the request in the shape the model family accepts
func (c *OpenAI) buildRequest(turns []Turn) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(turn.Role),
			Content: turn.Text,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}

	if IsReasoningModel(c.model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		// temperature is omitempty, so zero cannot be sent
		req.Temperature = 0.1
		req.MaxTokens = c.maxTokens
	}

	return req
}

// Complete sends the dialogue and returns the trimmed reply text
func (c *OpenAI) Complete(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(turns))
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name returns the backend name
func (c *OpenAI) Name() string {
	return "openai/" + c.model
}

func openAIRole(role Role) string {
	switch role {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
