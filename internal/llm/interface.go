// Package llm provides the streaming completion client.
package llm

import "context"

// StreamCallback receives each content fragment of the assistant's reply,
// in delivery order. Returning an error aborts the stream.
type StreamCallback func(delta string) error

// CompletionClient is the abstraction over the completion provider: submit
// a conversation, receive a fragment stream. Implementations run any
// model-requested tool calls internally; only reply text reaches the
// callback.
type CompletionClient interface {
	StreamChat(ctx context.Context, messages []ChatMessage, callback StreamCallback) error
}

// Ensure both implementations satisfy the interface.
var (
	_ CompletionClient = (*Client)(nil)
	_ CompletionClient = (*MockClient)(nil)
)
