package conversation

import "github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"

// OutcomeKind tags how a conversation ended
type OutcomeKind int

const (
	// OutcomeAbandoned means the user skipped the sentence; no card is made
	OutcomeAbandoned OutcomeKind = iota
	// OutcomeCreateCard means the user asked to finalize a card
	OutcomeCreateCard
	// OutcomeImagePrompt means the user wants to attach an image first
	OutcomeImagePrompt
	// OutcomeOffline means no model is configured; callers continue as
	// with OutcomeCreateCard and collect fields manually
	OutcomeOffline
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreateCard:
		return "create-card"
	case OutcomeImagePrompt:
		return "image-prompt"
	case OutcomeOffline:
		return "offline"
	default:
		return "abandoned"
	}
}

// Outcome is the result of one conversation. Abandoned outcomes carry no
// history.
type Outcome struct {
	Kind    OutcomeKind
	History []chat.Turn
}

// WantsCard reports whether a card should be produced
func (o Outcome) WantsCard() bool {
	return o.Kind != OutcomeAbandoned
}
