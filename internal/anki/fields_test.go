package anki

import (
	"strings"
	"testing"
)

func TestAssembleFields(t *testing.T) {
	f := AssembleFields("猫が好きです", "猫", "cat", "I like cats.", "", "")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"front", f.Front, `<div style="background:black; color:orange;">cat</div>`},
		{"back", f.Back, `<div style="background:black; color:orange;"><b><span style="color:orange;">猫</span></b></div>`},
		{"examples", f.Examples, `<div style="background:black; color:orange;"><b><span style="color:red;">猫</span></b>が好きです</div>`},
		{"example english", f.ExampleEnglish, `<div style="background:black; color:orange;">I like cats.</div>`},
		{"image", f.Image, ""},
		{"audio", f.Audio, ""},
		{"audio example", f.AudioExample, ""},
		{"grammar", f.Grammar, ""},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.expected)
		}
	}
}

func TestAssembleFields_FirstOccurrenceOnly(t *testing.T) {
	f := AssembleFields("猫と猫", "猫", "", "", "", "")

	if n := strings.Count(f.Examples, `<span style="color:red;">`); n != 1 {
		t.Errorf("Expected exactly one highlight, got %d in %q", n, f.Examples)
	}
	if !strings.Contains(f.Examples, "</b>と猫</div>") {
		t.Errorf("Expected second occurrence untouched, got %q", f.Examples)
	}
}

func TestAssembleFields_TargetNotInSentence(t *testing.T) {
	f := AssembleFields("犬が好きです", "猫", "cat", "I like dogs.", "", "")

	if f.Examples != wrap("犬が好きです") {
		t.Errorf("Expected unhighlighted sentence, got %q", f.Examples)
	}
	if f.Back != wrap(highlight("猫", "orange")) {
		t.Errorf("Back should still name the target word, got %q", f.Back)
	}
}

func TestAssembleFields_EmptyTarget(t *testing.T) {
	f := AssembleFields("猫が好きです", "", "", "", "", "")

	if f.Back != wrap("") {
		t.Errorf("Expected empty wrapped back, got %q", f.Back)
	}
	if f.Examples != wrap("猫が好きです") {
		t.Errorf("Expected plain example, got %q", f.Examples)
	}
}

func TestAssembleFields_MediaReferences(t *testing.T) {
	f := AssembleFields("猫", "猫", "cat", "cat", "img_abc.png", "audio_def.mp3")

	if f.Image != `<img src="img_abc.png">` {
		t.Errorf("Unexpected image slot %q", f.Image)
	}
	if f.AudioExample != "[sound:audio_def.mp3]" {
		t.Errorf("Unexpected audio example slot %q", f.AudioExample)
	}
	if f.Audio != "" {
		t.Errorf("Audio slot must stay empty, got %q", f.Audio)
	}
}

func TestAssembleFields_Pure(t *testing.T) {
	a := AssembleFields("猫が好きです", "猫", "cat", "I like cats.", "i.png", "a.mp3")
	b := AssembleFields("猫が好きです", "猫", "cat", "I like cats.", "i.png", "a.mp3")
	if a != b {
		t.Error("Expected identical inputs to give identical fields")
	}
}

func TestFieldsMap(t *testing.T) {
	m := Fields{}.Map()

	if len(m) != len(FieldNames) {
		t.Fatalf("Expected %d keys, got %d", len(FieldNames), len(m))
	}
	for _, name := range FieldNames {
		if _, ok := m[name]; !ok {
			t.Errorf("Missing field %q", name)
		}
	}

	values := Fields{Front: "f", Grammar: "g"}.Values()
	if values[0] != "f" || values[7] != "g" {
		t.Errorf("Values not in note-type order: %v", values)
	}
}
