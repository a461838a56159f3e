package llm

import "context"

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// LLMProvider is the contract for a chat-completion backend. The chat
// surface is a passthrough: the core neither retries nor rewrites what the
// model returns.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message) (string, error)
	Generate(ctx context.Context, prompt string) (string, error)
}
