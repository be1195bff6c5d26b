package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"
)

// ErrNoAPIKey is returned when listing without an OpenAI key
var ErrNoAPIKey = errors.New("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .wksentence.yaml")

// Catalog groups model ids by what wksentence can use them for
type Catalog struct {
	Chat      []string
	Reasoning []string
	TTS       []string
}

// Categorize sorts model ids into the catalog. Ids no component can use
// (embeddings, moderation, images) are dropped.
func Categorize(ids []string) Catalog {
	var c Catalog
	for _, id := range ids {
		lower := strings.ToLower(id)
		switch {
		case strings.Contains(lower, "tts"):
			c.TTS = append(c.TTS, id)
		case unusable(lower):
		case chat.IsReasoningModel(id):
			c.Reasoning = append(c.Reasoning, id)
		case strings.Contains(lower, "gpt") || strings.Contains(lower, "chat"):
			c.Chat = append(c.Chat, id)
		}
	}

	sort.Strings(c.Chat)
	sort.Strings(c.Reasoning)
	sort.Strings(c.TTS)
	return c
}

func unusable(id string) bool {
	for _, part := range []string{"audio", "realtime", "transcribe", "moderation", "embedding", "whisper", "dall-e", "image", "search"} {
		if strings.Contains(id, part) {
			return true
		}
	}
	return false
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. baseURL may be empty.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// Catalog fetches the models available to the API key
func (l *Lister) Catalog(ctx context.Context) (Catalog, error) {
	if l.apiKey == "" {
		return Catalog{}, ErrNoAPIKey
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		ids = append(ids, model.ID)
	}
	return Categorize(ids), nil
}

// ListAvailableModels prints the catalog to w, marking the configured
// chat and TTS models with an asterisk
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, chatModel, ttsModel string) error {
	catalog, err := l.Catalog(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Available OpenAI Models:")
	printSection(w, "Chat Models (--chat-model):", catalog.Chat, chatModel)
	printSection(w, "Reasoning Models (--chat-model, no temperature):", catalog.Reasoning, chatModel)
	printSection(w, "Text-to-Speech (TTS) Models (--tts-model):", catalog.TTS, ttsModel)

	fmt.Fprintln(w, "\nGemini models (gemini-*) are used for chat when GEMINI_API_KEY is set.")
	return nil
}

func printSection(w io.Writer, title string, ids []string, current string) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  No models found")
		return
	}
	for _, id := range ids {
		marker := " "
		if id == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s%s\n", marker, id)
	}
}
