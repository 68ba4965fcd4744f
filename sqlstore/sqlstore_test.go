package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/sqlstore"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/store/storetest"
)

func openMemory(t *testing.T) *sqlstore.DB {
	db, err := sqlstore.Open(context.Background(), "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEventStore(t *testing.T) {
	storetest.RunEventStore(t, func(t *testing.T) store.EventStore {
		return openMemory(t).Events()
	})
}

func TestConversationStore(t *testing.T) {
	storetest.RunConversationStore(t, func(t *testing.T) store.ConversationStore {
		return openMemory(t).Conversations()
	})
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inbox.db")
	opened := time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)

	db, err := sqlstore.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Conversations().Open(ctx, model.Conversation{
		ID:         model.ConversationID("A", opened),
		CustomerID: "A",
		OpenedAt:   opened,
		Channel:    model.ChannelGmail,
	}))
	require.NoError(t, db.Events().Add(ctx, model.Message{
		ID:        "m1",
		Channel:   model.ChannelGmail,
		Sender:    "A",
		Text:      "hola",
		Timestamp: opened,
	}))
	require.NoError(t, db.Close())

	db, err = sqlstore.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conv, err := db.Conversations().FindOpenByCustomer(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, model.ChannelGmail, conv.Channel)
	assert.True(t, conv.OpenedAt.Equal(opened))

	msgs, err := db.Events().All(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}
