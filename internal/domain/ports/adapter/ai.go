package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionAdapter is the port for the text-completion provider.
// Implementations report overload and hard failure through the
// domain.ErrProviderOverloaded / domain.ErrProviderFailure sentinels so
// callers can degrade to a user-facing apology.
type CompletionAdapter interface {
	ModelName() string

	// Complete returns the assistant text for a single user prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}
