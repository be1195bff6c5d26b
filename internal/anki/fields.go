// Package anki assembles card fields and delivers notes to Anki, either
// live through AnkiConnect or offline as an .apkg package.
package anki

import (
	"fmt"
	"strings"
)

const (
	styleOpen  = `<div style="background:black; color:orange;">`
	styleClose = `</div>`
)

// Field names of the note type the cards are added to
const (
	FieldFront          = "Front[ENG]"
	FieldImage          = "Image"
	FieldBack           = "Back[SWE]"
	FieldExamples       = "Examples"
	FieldAudio          = "Audio"
	FieldExampleEnglish = "Example English"
	FieldAudioExample   = "Audio Example"
	FieldGrammar        = "Grammar"
)

// FieldNames lists the note fields in note-type order
var FieldNames = []string{
	FieldFront,
	FieldImage,
	FieldBack,
	FieldExamples,
	FieldAudio,
	FieldExampleEnglish,
	FieldAudioExample,
	FieldGrammar,
}

// Fields holds the eight slots of a card. Slots are never nil; an unused
// slot is the empty string.
type Fields struct {
	Front          string
	Image          string
	Back           string
	Examples       string
	Audio          string
	ExampleEnglish string
	AudioExample   string
	Grammar        string
}

// Map returns the field mapping sent to Anki. Every field name is present.
func (f Fields) Map() map[string]string {
	return map[string]string{
		FieldFront:          f.Front,
		FieldImage:          f.Image,
		FieldBack:           f.Back,
		FieldExamples:       f.Examples,
		FieldAudio:          f.Audio,
		FieldExampleEnglish: f.ExampleEnglish,
		FieldAudioExample:   f.AudioExample,
		FieldGrammar:        f.Grammar,
	}
}

// Values returns the slots in note-type order
func (f Fields) Values() []string {
	m := f.Map()
	values := make([]string, len(FieldNames))
	for i, name := range FieldNames {
		values[i] = m[name]
	}
	return values
}

// AssembleFields builds the card fields for a sentence. Only the first
// occurrence of targetWord in the example sentence is highlighted.
// Empty media references leave their slots empty.
func AssembleFields(sentence, targetWord, englishWord, translation, imageRef, audioRef string) Fields {
	example := sentence
	if targetWord != "" {
		if i := strings.Index(sentence, targetWord); i >= 0 {
			example = sentence[:i] + highlight(targetWord, "red") + sentence[i+len(targetWord):]
		}
	}

	back := ""
	if targetWord != "" {
		back = highlight(targetWord, "orange")
	}

	return Fields{
		Front:          wrap(englishWord),
		Image:          ImageTag(imageRef),
		Back:           wrap(back),
		Examples:       wrap(example),
		ExampleEnglish: wrap(translation),
		AudioExample:   SoundTag(audioRef),
	}
}

// ImageTag returns the HTML image reference for a media filename
func ImageTag(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s">`, filename)
}

// SoundTag returns the Anki sound reference for a media filename
func SoundTag(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filename)
}

func highlight(word, color string) string {
	return fmt.Sprintf(`<b><span style="color:%s;">%s</span></b>`, color, word)
}

func wrap(s string) string {
	return styleOpen + s + styleClose
}
