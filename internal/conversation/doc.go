// Package conversation implements the interactive dialogue that turns a
// copied Japanese sentence into a card request. It owns the dialogue
// history, parses the user's commands and decides whether the flow ends
// in card creation, an image prompt, or abandonment.
package conversation
