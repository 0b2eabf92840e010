package service

import (
	"context"
	"fmt"

	"github.com/luoxiaowei/chatflow/internal/domain"
	"github.com/luoxiaowei/chatflow/internal/markdown"
)

// ListMessages returns a conversation's messages in creation order.
// Assistant content is normalized on the way out so stored replies with
// malformed code fences render correctly.
func (s *Service) ListMessages(ctx context.Context, conversationID int64) ([]domain.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for i := range msgs {
		if msgs[i].Role == domain.RoleAssistant {
			msgs[i].Content = markdown.Normalize(msgs[i].Content)
		}
	}
	return msgs, nil
}

func (s *Service) AppendMessage(ctx context.Context, conversationID int64, role domain.Role, content string) (*domain.Message, error) {
	if !role.Valid() {
		return nil, domain.BadRequestf("role must be user or assistant")
	}
	if content == "" {
		return nil, domain.BadRequestf("content is required")
	}
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	msg := &domain.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}
