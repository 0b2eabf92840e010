package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luoxiaowei/chatflow/internal/domain"
	"github.com/luoxiaowei/chatflow/internal/llm"
	"github.com/luoxiaowei/chatflow/internal/stream"
)

const systemPrompt = "You are a helpful assistant. Answer concisely and use Markdown formatting where it helps readability."

// Handle runs one turn: resolves the conversation, repairs history on
// regeneration, persists the inbound window, and starts the completion
// stream. The returned reader delivers the assistant's fragments to the
// caller; a second reader over the same stream feeds the background
// accumulator that persists the reply.
func (s *Service) Handle(ctx context.Context, req *domain.TurnRequest) (*stream.Reader, error) {
	if len(req.Messages) == 0 {
		return nil, domain.BadRequestf("messages are required")
	}
	for _, m := range req.Messages {
		if !m.Role.Valid() {
			return nil, domain.BadRequestf("role must be user or assistant")
		}
	}

	turnID := uuid.New().String()[:8]
	logger := s.logger.With().Str("turn", turnID).Logger()

	conv, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Int64("conversation", conv.ID).Logger()

	if err := s.repairRegeneration(ctx, conv.ID, req, logger); err != nil {
		return nil, err
	}

	window := req.Window()
	if err := s.persistWindow(ctx, conv.ID, window); err != nil {
		return nil, err
	}

	msgs := make([]llm.ChatMessage, 0, len(window)+1)
	msgs = append(msgs, llm.ChatMessage{Role: "system", Content: systemPrompt})
	for _, m := range window {
		msgs = append(msgs, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	fan := stream.NewFanout()
	clientReader := fan.NewReader()
	accReader := fan.NewReader()

	// The producer runs on the request context so a client disconnect
	// cancels the upstream call. The accumulator deliberately does not:
	// whatever arrived before the cancel still gets persisted.
	s.tasks.Go(func() {
		err := s.llm.StreamChat(ctx, msgs, func(delta string) error {
			fan.Write(stream.Chunk{Delta: delta})
			return nil
		})
		fan.Close(err)
		if err != nil {
			logger.Error().Err(err).Msg("completion stream ended with error")
		}
	})

	s.tasks.Go(func() {
		s.accumulate(conv.ID, accReader, logger)
	})

	return clientReader, nil
}

// resolveConversation maps the request's optional id to a conversation,
// creating one titled from the first turn when no id is given.
func (s *Service) resolveConversation(ctx context.Context, req *domain.TurnRequest) (*domain.Conversation, error) {
	if req.ID == "" {
		conv, err := s.store.CreateConversation(ctx, conversationTitle(req.Messages[0].Content))
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conv, nil
	}

	id, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		return nil, domain.BadRequestf("invalid conversation id %q", req.ID)
	}
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.NotFoundf("conversation %d not found", id)
	}
	if err := s.store.TouchConversation(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}
	return conv, nil
}

// repairRegeneration removes the trailing assistant message when the
// client asks for a fresh reply to the same user turn. The explicit flag
// is authoritative; without it, a resubmitted last user turn that exactly
// matches the stored one followed by an assistant reply triggers the same
// repair. Content equality is a heuristic; an id-based correlation from
// the client would be sturdier.
func (s *Service) repairRegeneration(ctx context.Context, conversationID int64, req *domain.TurnRequest, logger zerolog.Logger) error {
	latest, err := s.store.LatestMessages(ctx, conversationID, 2)
	if err != nil {
		return fmt.Errorf("failed to load latest messages: %w", err)
	}
	if len(latest) == 0 || latest[0].Role != domain.RoleAssistant {
		return nil
	}

	regenerate := req.IsRegenerating
	if !regenerate && len(latest) == 2 {
		last := req.Messages[len(req.Messages)-1]
		regenerate = last.Role == domain.RoleUser &&
			latest[1].Role == domain.RoleUser &&
			latest[1].Content == last.Content
	}
	if !regenerate {
		return nil
	}

	if err := s.store.DeleteMessage(ctx, latest[0].ID); err != nil {
		return fmt.Errorf("failed to delete assistant message: %w", err)
	}
	logger.Info().Int64("message", latest[0].ID).Msg("removed previous assistant reply for regeneration")
	return nil
}

// persistWindow inserts the turns the store has not seen before. Exact
// match on role and content keeps resubmitted history from duplicating.
func (s *Service) persistWindow(ctx context.Context, conversationID int64, window []domain.TurnMessage) error {
	for _, m := range window {
		exists, err := s.store.HasMessage(ctx, conversationID, m.Role, m.Content)
		if err != nil {
			return fmt.Errorf("failed to check message: %w", err)
		}
		if exists {
			continue
		}
		msg := &domain.Message{
			ConversationID: conversationID,
			Role:           m.Role,
			Content:        m.Content,
		}
		if err := s.store.CreateMessage(ctx, msg); err != nil {
			return fmt.Errorf("failed to persist turn: %w", err)
		}
	}
	return nil
}
