// Package chat provides the request/response contract used to talk to a
// chat-completion language model, with OpenAI and Gemini backends.
package chat
