package llm

import (
	"context"
	"fmt"
)

// MockClient is a deterministic CompletionClient for tests and local
// development without an upstream API key.
type MockClient struct{}

// NewMockClient creates a new mock completion client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// StreamChat emits a canned reply in small fragments. Chunking is by
// rune so a fragment never splits a multi-byte character.
func (m *MockClient) StreamChat(ctx context.Context, messages []ChatMessage, callback StreamCallback) error {
	reply := []rune(m.reply(messages))

	const chunkSize = 10
	for i := 0; i < len(reply); i += chunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := i + chunkSize
		if end > len(reply) {
			end = len(reply)
		}
		if err := callback(string(reply[i:end])); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockClient) reply(messages []ChatMessage) string {
	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			lastUser = messages[i].Content
			break
		}
	}
	if lastUser == "" {
		return "[MOCK] This is a mock completion."
	}
	if runes := []rune(lastUser); len(runes) > 100 {
		lastUser = string(runes[:100]) + "..."
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock completion.", lastUser)
}
