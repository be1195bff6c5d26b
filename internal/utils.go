package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// Version is the application version shown by --version
const Version = "0.3.0"

// ContentID derives a short identifier from the given parts.
// Format: md5(parts joined by NUL)[:12]
func ContentID(parts ...string) string {
	hash := md5.Sum([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])[:12]
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isFilenameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isFilenameRune keeps letters and digits of any script (kana, kanji, latin)
func isFilenameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
