package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/luoxiaowei/chatflow/internal/domain"
)

const (
	titleMaxLen      = 50
	placeholderTitle = "New Conversation"
)

func (s *Service) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	convs, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *Service) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	conv, err := s.store.CreateConversation(ctx, conversationTitle(title))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *Service) GetConversation(ctx context.Context, id int64) (*domain.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.NotFoundf("conversation %d not found", id)
	}
	return conv, nil
}

func (s *Service) RenameConversation(ctx context.Context, id int64, title string) (*domain.Conversation, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.BadRequestf("title is required")
	}
	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateConversationTitle(ctx, id, title); err != nil {
		return nil, fmt.Errorf("failed to rename conversation: %w", err)
	}
	conv.Title = title
	return conv, nil
}

func (s *Service) DeleteConversation(ctx context.Context, id int64) error {
	if _, err := s.GetConversation(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// conversationTitle derives a display title from free text: trimmed,
// truncated, with a placeholder for empty input.
func conversationTitle(text string) string {
	title := strings.TrimSpace(text)
	if title == "" {
		return placeholderTitle
	}
	runes := []rune(title)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen])
	}
	return title
}
