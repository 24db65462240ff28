// Package groq provides a ChatService adapter for the Groq API.
// Groq exposes an OpenAI-compatible chat-completions endpoint, so the
// adapter also works against any compatible base URL.
package groq
