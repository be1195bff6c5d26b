package conversation

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"
)

func TestHistory_AppendOnly(t *testing.T) {
	h := NewHistory("system", "invite")
	require.Equal(t, 2, h.Len())

	snapshot := h.Turns()
	snapshot[0].Text = "tampered"

	h.Append(chat.RoleUser, "question")
	turns := h.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "system", turns[0].Text)
	assert.Equal(t, chat.RoleUser, turns[2].Role)
}

func TestSystemMessage(t *testing.T) {
	msg := SystemMessage("猫が好きです", "I like cats.")
	assert.Contains(t, msg, "JAPANESE SENTENCE (DO NOT ALTER): 猫が好きです")
	assert.Contains(t, msg, "ENGLISH SENTENCE (AUTHORITATIVE, DO NOT ALTER): I like cats.")
	assert.Contains(t, msg, "MUST NOT output any alternative English translation")
}

func TestCardMetadataPrompt(t *testing.T) {
	msg := CardMetadataPrompt("猫が好きです", "I like cats.")
	assert.Contains(t, msg, "JP: 「猫が好きです」")
	assert.Contains(t, msg, "EN: I like cats.")
}

func TestLineReader(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewLineReader(strings.NewReader("first\r\nsecond\nlast"), out)
	ctx := context.Background()

	for _, want := range []string{"first", "second", "last"} {
		got, err := r.ReadLine(ctx, "> ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(ctx, "> ")
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine(ctx, "> ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, strings.Repeat("> ", 5), out.String())
}

func TestLineReader_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	r := NewLineReader(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ReadLine(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
