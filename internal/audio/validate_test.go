package audio

import (
	"strings"
	"testing"
)

func TestValidateJapaneseText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "kanji and hiragana",
			text:    "猫が好きです",
			wantErr: false,
		},
		{
			name:    "katakana only",
			text:    "コーヒー",
			wantErr: false,
		},
		{
			name:    "mixed with latin",
			text:    "WaniKaniで勉強する",
			wantErr: false,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: true,
			errMsg:  "text cannot be empty",
		},
		{
			name:    "whitespace only",
			text:    "   \t\n",
			wantErr: true,
			errMsg:  "text cannot be empty",
		},
		{
			name:    "English text",
			text:    "Hello world",
			wantErr: true,
			errMsg:  "text must contain Japanese characters",
		},
		{
			name:    "Cyrillic text",
			text:    "ябълка",
			wantErr: true,
			errMsg:  "text must contain Japanese characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJapaneseText(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateJapaneseText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateJapaneseText() error = %v, want error containing %v", err.Error(), tt.errMsg)
				}
			}
		})
	}
}
