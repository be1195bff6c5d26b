package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Gemini implements Completer on top of the Gemini API
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
	timeout   time.Duration
}

// NewGemini creates a Gemini chat backend
func NewGemini(ctx context.Context, config *Config) (*Gemini, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.GeminiURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.GeminiURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	maxTokens := int32(config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &Gemini{
		client:    client,
		model:     config.Model,
		maxTokens: maxTokens,
		timeout:   config.Timeout,
	}, nil
}

// splitTurns separates system turns, which Gemini takes as the system
// instruction, from the dialogue contents.
func splitTurns(turns []Turn) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, turn := range turns {
		switch turn.Role {
		case RoleSystem:
			system = append(system, turn.Text)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(turn.Text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(turn.Text, genai.RoleUser))
		}
	}

	return strings.Join(system, "\n\n"), contents
}

// Complete sends the dialogue to Gemini and returns the reply text
func (g *Gemini) Complete(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	system, contents := splitTurns(turns)

	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: g.maxTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return strings.TrimSpace(res.Text()), nil
}

// Name returns the backend name
func (g *Gemini) Name() string {
	return "gemini/" + g.model
}
