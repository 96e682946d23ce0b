package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
	"github.com/vegasseoguru/guru-web-ui/internal/services"
)

func newStore(t *testing.T) services.BoltDB {
	t.Helper()
	store, err := services.NewBoltDB(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestConversationRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.AddConversation(ctx, models.Conversation{ID: "abc"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	convs, err := store.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, id, convs[0].ID)

	require.NoError(t, store.UpdateConversation(ctx, models.Conversation{
		ID:    id,
		Title: "Audit questions",
	}))
	convs, err = store.Conversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Audit questions", convs[0].Title)
}

func TestMessagesInsertionOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	convID, err := store.AddConversation(ctx, models.Conversation{ID: "abc"})
	require.NoError(t, err)

	now := time.Now()
	for _, content := range []string{"first", "second", "third"} {
		_, err := store.AddMessage(ctx, convID, models.Message{
			ID:        content,
			Role:      models.RoleUser,
			Content:   content,
			Timestamp: now,
		})
		require.NoError(t, err)
	}

	msgs, err := store.Messages(ctx, convID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "third", msgs[2].Content)
}

func TestMessagesForUnknownConversation(t *testing.T) {
	store := newStore(t)

	msgs, err := store.Messages(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
