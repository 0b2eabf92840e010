// Package store defines conversation persistence and its SQLite implementation.
package store

import (
	"context"

	"github.com/luoxiaowei/chatflow/internal/domain"
)

// Store defines the interface for conversation and message persistence.
//
// All mutations are independent point writes; there are no multi-row
// transactions. A crash between "insert message" and "touch conversation"
// can leave the conversation timestamp stale, which is accepted.
type Store interface {
	// Conversation operations
	CreateConversation(ctx context.Context, title string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*domain.Conversation, error)
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id int64, title string) error
	TouchConversation(ctx context.Context, id int64) error
	DeleteConversation(ctx context.Context, id int64) error

	// Message operations
	CreateMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID int64) ([]domain.Message, error)
	LatestMessages(ctx context.Context, conversationID int64, limit int) ([]domain.Message, error)
	HasMessage(ctx context.Context, conversationID int64, role domain.Role, content string) (bool, error)
	UpdateMessageContent(ctx context.Context, id int64, content string) error
	DeleteMessage(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}
