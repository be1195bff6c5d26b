package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/testutil"
)

func TestFilename(t *testing.T) {
	a := Filename("猫が好きです")
	if !strings.HasPrefix(a, "audio_") || !strings.HasSuffix(a, ".mp3") {
		t.Errorf("Unexpected filename %q", a)
	}
	if a != Filename("猫が好きです") {
		t.Error("Filename must be stable for the same sentence")
	}
	if a == Filename("犬が好きです") {
		t.Error("Different sentences must get different filenames")
	}
}

func TestSynthesize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")
	provider := &mockProvider{name: "mock", data: []byte("mp3")}
	s := NewSynthesizer(provider, dir, zerolog.Nop())

	asset, err := s.Synthesize(context.Background(), "猫が好きです")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if asset.Filename != Filename("猫が好きです") {
		t.Errorf("Unexpected filename %q", asset.Filename)
	}
	if asset.Path != filepath.Join(dir, asset.Filename) {
		t.Errorf("Unexpected path %q", asset.Path)
	}
	testutil.AssertFileContains(t, asset.Path, "mp3")

	// second call reuses the file
	again, err := s.Synthesize(context.Background(), "猫が好きです")
	if err != nil {
		t.Fatal(err)
	}
	if again != asset {
		t.Errorf("Expected same asset, got %+v", again)
	}
	if provider.generateCalls != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.generateCalls)
	}
}

func TestSynthesize_Failures(t *testing.T) {
	dir := t.TempDir()

	t.Run("provider error", func(t *testing.T) {
		s := NewSynthesizer(&mockProvider{name: "mock", generateErr: errors.New("quota")}, dir, zerolog.Nop())
		asset, err := s.Synthesize(context.Background(), "猫")
		if err == nil || !strings.Contains(err.Error(), "quota") {
			t.Errorf("Expected provider error, got %v", err)
		}
		if !asset.IsZero() {
			t.Errorf("Expected zero asset, got %+v", asset)
		}
	})

	t.Run("provider wrote nothing", func(t *testing.T) {
		s := NewSynthesizer(&mockProvider{name: "mock"}, dir, zerolog.Nop())
		if _, err := s.Synthesize(context.Background(), "犬"); err == nil {
			t.Error("Expected error when no file was produced")
		}
	})

	t.Run("not configured", func(t *testing.T) {
		s := NewSynthesizer(nil, dir, zerolog.Nop())
		if _, err := s.Synthesize(context.Background(), "鳥"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("not configured but cached", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, Filename("魚")), []byte("mp3"), 0644)
		s := NewSynthesizer(nil, dir, zerolog.Nop())
		if _, err := s.Synthesize(context.Background(), "魚"); err != nil {
			t.Errorf("Expected cached file to be served, got %v", err)
		}
	})

	t.Run("invalid text", func(t *testing.T) {
		s := NewSynthesizer(&mockProvider{name: "mock", data: []byte("x")}, dir, zerolog.Nop())
		if _, err := s.Synthesize(context.Background(), "hello"); err == nil {
			t.Error("Expected validation error")
		}
	})
}
