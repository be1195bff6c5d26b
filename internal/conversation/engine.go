package conversation

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"
)

const commandHelp = "Commands: /anki | /skip | /image"

// Engine runs one conversation at a time. A nil Completer puts the engine
// in offline mode.
type Engine struct {
	completer chat.Completer
	in        Input
	out       io.Writer
	logger    zerolog.Logger
}

// NewEngine creates a conversation engine
func NewEngine(completer chat.Completer, in Input, out io.Writer, logger zerolog.Logger) *Engine {
	return &Engine{
		completer: completer,
		in:        in,
		out:       out,
		logger:    logger.With().Str("component", "conversation").Logger(),
	}
}

// Offline reports whether no language model is configured
func (e *Engine) Offline() bool {
	return e.completer == nil
}

// Start runs the dialogue about sentence until the user picks a way out.
// The returned error is non-nil only when the input is exhausted or ctx
// is cancelled; every other path ends in an Outcome.
func (e *Engine) Start(ctx context.Context, sentence, translation string) (Outcome, error) {
	history := NewHistory(SystemMessage(sentence, translation), Invitation(sentence))

	if e.Offline() {
		fmt.Fprintf(e.out, "\nAI (offline): %s\n", Invitation(sentence))
		return Outcome{Kind: OutcomeOffline, History: history.Turns()}, nil
	}

	fmt.Fprintf(e.out, "\nAI: %s\n", Invitation(sentence))
	fmt.Fprintf(e.out, "\n%s\n", commandHelp)

	for {
		line, err := e.in.ReadLine(ctx, "\nYou: ")
		if err != nil {
			return Outcome{}, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd := ParseCommand(line)
		switch cmd {
		case CommandSkip:
			e.logger.Debug().Int("turns", history.Len()).Msg("conversation skipped")
			return Outcome{Kind: OutcomeAbandoned}, nil
		case CommandImage:
			return Outcome{Kind: OutcomeImagePrompt, History: history.Turns()}, nil
		case CommandCreateCard:
			return Outcome{Kind: OutcomeCreateCard, History: history.Turns()}, nil
		}

		history.Append(chat.RoleUser, line)

		abandoned, err := e.answer(ctx, history)
		if err != nil {
			return Outcome{}, err
		}
		if abandoned {
			return Outcome{Kind: OutcomeAbandoned}, nil
		}
	}
}

// answer asks the model about the current history tail. A failed call is
// retried on the same tail for as long as the user types "retry"; any
// other answer abandons the conversation.
func (e *Engine) answer(ctx context.Context, history *History) (bool, error) {
	for {
		reply, err := e.completer.Complete(ctx, history.Turns())
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}

			e.logger.Warn().Err(err).Str("backend", e.completer.Name()).Msg("model call failed")
			fmt.Fprintf(e.out, "[AI] %s error: %v\n", e.completer.Name(), err)

			choice, err := e.in.ReadLine(ctx, "Type 'retry' or '/skip': ")
			if err != nil {
				return false, err
			}
			if strings.EqualFold(strings.TrimSpace(choice), "retry") {
				continue
			}
			return true, nil
		}

		if reply == "" {
			e.logger.Warn().Str("backend", e.completer.Name()).Msg("empty reply from model")
			fmt.Fprintln(e.out, "\n[AI ERROR] Empty response from model. Please ask again.")
			return false, nil
		}

		history.Append(chat.RoleAssistant, reply)
		fmt.Fprintf(e.out, "\nAI: %s\n", reply)
		return false, nil
	}
}
