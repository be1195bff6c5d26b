package conversation

import "github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"

// History is the append-only dialogue of one conversation. The first turn
// is always the system instruction and the second the assistant's
// invitation.
type History struct {
	turns []chat.Turn
}

// NewHistory starts a history with the system instruction and invitation
func NewHistory(system, invitation string) *History {
	return &History{
		turns: []chat.Turn{
			{Role: chat.RoleSystem, Text: system},
			{Role: chat.RoleAssistant, Text: invitation},
		},
	}
}

// Append adds a turn at the end
func (h *History) Append(role chat.Role, text string) {
	h.turns = append(h.turns, chat.Turn{Role: role, Text: text})
}

// Turns returns a copy of the turns in order
func (h *History) Turns() []chat.Turn {
	out := make([]chat.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns
func (h *History) Len() int {
	return len(h.turns)
}
