package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luoxiaowei/chatflow/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConversationCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "hello world")
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Equal(t, "hello world", conv.Title)
	assert.NotZero(t, conv.CreatedAt)
	assert.Equal(t, conv.CreatedAt, conv.UpdatedAt)

	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conv.Title, got.Title)

	require.NoError(t, s.UpdateConversationTitle(ctx, conv.ID, "renamed"))
	got, err = s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))
	got, err = s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetConversationAbsent(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetConversation(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListConversationsNewestUpdatedFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older, err := s.CreateConversation(ctx, "older")
	require.NoError(t, err)
	newer, err := s.CreateConversation(ctx, "newer")
	require.NoError(t, err)

	// Timestamps are second-granularity; backdate the older conversation so
	// ordering does not depend on insertion racing the clock.
	_, err = s.db.Exec(`UPDATE conversations SET updated_at = updated_at - 100 WHERE id = ?`, older.ID)
	require.NoError(t, err)

	convs, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, newer.ID, convs[0].ID)
	assert.Equal(t, older.ID, convs[1].ID)
}

func TestCreateMessageTouchesConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE conversations SET updated_at = updated_at - 100 WHERE id = ?`, conv.ID)
	require.NoError(t, err)

	msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "hi"}
	require.NoError(t, s.CreateMessage(ctx, msg))
	assert.NotZero(t, msg.ID)
	assert.NotZero(t, msg.CreatedAt)

	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.UpdatedAt, got.CreatedAt)
	assert.GreaterOrEqual(t, got.UpdatedAt, msg.CreatedAt)
}

func TestListMessagesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: content}
		require.NoError(t, s.CreateMessage(ctx, msg))
	}

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)

	latest, err := s.LatestMessages(ctx, conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "third", latest[0].Content)
	assert.Equal(t, "second", latest[1].Content)
}

func TestHasMessageExactMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)
	msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "hello"}
	require.NoError(t, s.CreateMessage(ctx, msg))

	ok, err := s.HasMessage(ctx, conv.ID, domain.RoleUser, "hello")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasMessage(ctx, conv.ID, domain.RoleAssistant, "hello")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasMessage(ctx, conv.ID, domain.RoleUser, "hello ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateMessageContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)
	msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleAssistant, Content: "partial"}
	require.NoError(t, s.CreateMessage(ctx, msg))

	require.NoError(t, s.UpdateMessageContent(ctx, msg.ID, "partial plus the rest"))

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "partial plus the rest", msgs[0].Content)
	assert.Equal(t, msg.ID, msgs[0].ID)
}

func TestDeleteConversationCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "m"}
		require.NoError(t, s.CreateMessage(ctx, msg))
	}

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

// Foreign-key enforcement is per-connection, so the cascade has to hold
// on a file-backed multi-connection pool, not just the single-connection
// in-memory store.
func TestDeleteConversationCascadesAcrossPoolConnections(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "chatflow.db") + "?cache=shared&mode=rwc"
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// Force every statement onto a fresh connection.
	s.db.SetMaxIdleConns(0)

	ctx := context.Background()
	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "m"}
		require.NoError(t, s.CreateMessage(ctx, msg))
	}

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestDeleteMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "c")
	require.NoError(t, err)
	msg := &domain.Message{ConversationID: conv.ID, Role: domain.RoleAssistant, Content: "bye"}
	require.NoError(t, s.CreateMessage(ctx, msg))

	require.NoError(t, s.DeleteMessage(ctx, msg.ID))
	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
