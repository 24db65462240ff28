package driven

import "context"

// ChatService provides chat-completion calls against a remote language
// model. The core depends only on this request/response contract, not on
// any specific provider.
type ChatService interface {
	// Complete sends a conversation and returns the generated content
	// together with the token usage reported by the service.
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (*Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompletionOptions configures generation behaviour.
type CompletionOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// Completion is the result of a chat-completion call.
type Completion struct {
	// Content is the generated text.
	Content string

	// TokensUsed is the total token count (prompt + completion)
	// reported by the service. Zero when the service omits usage.
	TokensUsed int
}
