package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luoxiaowei/chatflow/internal/config"
	"github.com/luoxiaowei/chatflow/internal/domain"
	"github.com/luoxiaowei/chatflow/internal/store"
)

func newCRUDService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, nil, &config.Config{}, zerolog.Nop())
}

func TestConversationCRUD(t *testing.T) {
	svc := newCRUDService(t)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "  My chat  ")
	require.NoError(t, err)
	assert.Equal(t, "My chat", conv.Title)

	empty, err := svc.CreateConversation(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, placeholderTitle, empty.Title)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.Title, got.Title)

	renamed, err := svc.RenameConversation(ctx, conv.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)

	_, err = svc.RenameConversation(ctx, conv.ID, "  ")
	assert.True(t, domain.IsBadRequest(err))

	require.NoError(t, svc.DeleteConversation(ctx, conv.ID))
	_, err = svc.GetConversation(ctx, conv.ID)
	assert.True(t, domain.IsNotFound(err))

	err = svc.DeleteConversation(ctx, conv.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestAppendMessageValidation(t *testing.T) {
	svc := newCRUDService(t)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "t")
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, conv.ID, "system", "x")
	assert.True(t, domain.IsBadRequest(err))

	_, err = svc.AppendMessage(ctx, conv.ID, domain.RoleUser, "")
	assert.True(t, domain.IsBadRequest(err))

	_, err = svc.AppendMessage(ctx, 9999, domain.RoleUser, "x")
	assert.True(t, domain.IsNotFound(err))

	msg, err := svc.AppendMessage(ctx, conv.ID, domain.RoleUser, "hello")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
}

func TestListMessagesNormalizesAssistantContent(t *testing.T) {
	svc := newCRUDService(t)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "t")
	require.NoError(t, err)

	raw := "```python\\nprint(1)\\n```"
	_, err = svc.AppendMessage(ctx, conv.ID, domain.RoleAssistant, raw)
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, conv.ID, domain.RoleUser, raw)
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "```python\nprint(1)\n```", msgs[0].Content)
	// User content passes through untouched.
	assert.Equal(t, raw, msgs[1].Content)

	_, err = svc.ListMessages(ctx, 9999)
	assert.True(t, domain.IsNotFound(err))
}
