package conversation

import "strings"

// Command is the closed set of things a line of user input can mean
type Command int

const (
	CommandFreeText Command = iota
	CommandSkip
	CommandImage
	CommandCreateCard
)

func (c Command) String() string {
	switch c {
	case CommandSkip:
		return "/skip"
	case CommandImage:
		return "/image"
	case CommandCreateCard:
		return "/anki"
	default:
		return "free text"
	}
}

// ParseCommand classifies a line of user input. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseCommand(line string) Command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/skip":
		return CommandSkip
	case "/image":
		return CommandImage
	case "/anki":
		return CommandCreateCard
	default:
		return CommandFreeText
	}
}
