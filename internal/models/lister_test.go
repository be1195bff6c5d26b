package models

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestCategorize(t *testing.T) {
	ids := []string{
		"gpt-4o", "gpt-4o-mini-tts", "tts-1", "o3-mini", "omni-moderation-latest",
		"text-embedding-3-small", "whisper-1", "dall-e-3", "gpt-4o-audio-preview",
		"gpt-3.5-turbo", "tts-1-hd", "o1",
	}

	got := Categorize(ids)
	want := Catalog{
		Chat:      []string{"gpt-3.5-turbo", "gpt-4o"},
		Reasoning: []string{"o1", "o3-mini"},
		TTS:       []string{"gpt-4o-mini-tts", "tts-1", "tts-1-hd"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categorize() = %+v, want %+v", got, want)
	}
}

func TestListAvailableModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{}, "gpt-4o", "tts-1")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got: %v", err)
	}
}

func TestListAvailableModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o","object":"model","owned_by":"openai"},
			{"id":"o3-mini","object":"model","owned_by":"openai"},
			{"id":"gpt-4o-mini-tts","object":"model","owned_by":"openai"},
			{"id":"tts-1","object":"model","owned_by":"openai"}
		]}`))
	}))
	defer server.Close()

	lister := NewLister("test-key", server.URL+"/v1")
	var out bytes.Buffer
	if err := lister.ListAvailableModels(context.Background(), &out, "gpt-4o", "tts-1"); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}

	text := out.String()
	for _, expected := range []string{" *gpt-4o\n", "  o3-mini\n", "  gpt-4o-mini-tts\n", " *tts-1\n", "Gemini"} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, text)
		}
	}
}

func TestListAvailableModels_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	lister := NewLister("bad-key", server.URL+"/v1")
	err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{}, "", "")
	if err == nil || !strings.Contains(err.Error(), "failed to list models") {
		t.Errorf("Expected wrapped list error, got: %v", err)
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	lister := NewLister(apiKey, "")
	if err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{}, "gpt-4o", "tts-1"); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
