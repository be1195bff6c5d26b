// Package processor is the session loop of wksentence. It takes captured
// sentences one at a time through the conversation, collects the card
// metadata from the operator, fetches an image, synthesizes audio,
// assembles the fields and submits the note to Anki, optionally also
// exporting it to an .apkg package. Build wires the production
// collaborators from the resolved configuration.
package processor
