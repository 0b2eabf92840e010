package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/luoxiaowei/chatflow/internal/domain"
	"github.com/luoxiaowei/chatflow/internal/markdown"
	"github.com/luoxiaowei/chatflow/internal/stream"
)

// flushEvery is the number of fragments between intermediate persistence
// flushes while a reply is still streaming.
const flushEvery = 50

// accumulate drains its own reader over the turn's stream, reconstructs
// the full reply and persists it as one assistant message. Runs on a
// background context so a client disconnect does not abort persistence;
// the producer's error close is what ends the read loop. Failures here
// are logged only, the caller already has its stream.
func (s *Service) accumulate(conversationID int64, reader *stream.Reader, logger zerolog.Logger) {
	defer reader.Close()

	ctx := context.Background()
	var sb strings.Builder
	var messageID int64
	pending := 0

	for {
		chunk, err := reader.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn().Err(err).Int("accumulated", sb.Len()).Msg("stream interrupted, saving partial reply")
			}
			break
		}
		sb.WriteString(chunk.Delta)
		pending++
		if pending >= flushEvery {
			pending = 0
			if err := s.saveAssistant(ctx, conversationID, &messageID, sb.String()); err != nil {
				logger.Error().Err(err).Msg("failed to flush assistant message")
			}
		}
	}

	if sb.Len() == 0 && messageID == 0 {
		return
	}
	if err := s.saveAssistant(ctx, conversationID, &messageID, sb.String()); err != nil {
		logger.Error().Err(err).Msg("failed to persist assistant message")
		return
	}
	logger.Info().Int64("message", messageID).Int("length", sb.Len()).Msg("persisted assistant reply")
}

// saveAssistant inserts the reply on first call and updates it in place on
// later ones, so at most one assistant message exists per turn no matter
// how many flushes happen.
func (s *Service) saveAssistant(ctx context.Context, conversationID int64, messageID *int64, content string) error {
	content = markdown.Normalize(content)
	if *messageID == 0 {
		msg := &domain.Message{
			ConversationID: conversationID,
			Role:           domain.RoleAssistant,
			Content:        content,
		}
		if err := s.store.CreateMessage(ctx, msg); err != nil {
			return err
		}
		*messageID = msg.ID
		return nil
	}
	if err := s.store.UpdateMessageContent(ctx, *messageID, content); err != nil {
		return err
	}
	return s.store.TouchConversation(ctx, conversationID)
}
