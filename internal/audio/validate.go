package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateJapaneseText checks that text contains kana or kanji
func ValidateJapaneseText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return nil
		}
	}

	return fmt.Errorf("text must contain Japanese characters")
}
