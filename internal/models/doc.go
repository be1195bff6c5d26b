// Package models lists the OpenAI models available to the configured key,
// grouped into the chat, reasoning and TTS models wksentence can use.
package models
