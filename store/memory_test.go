package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/store/storetest"
)

func TestMemoryEventStore(t *testing.T) {
	storetest.RunEventStore(t, func(t *testing.T) store.EventStore {
		return store.NewMemoryEventStore()
	})
}

func TestMemoryConversationStore(t *testing.T) {
	storetest.RunConversationStore(t, func(t *testing.T) store.ConversationStore {
		return store.NewMemoryConversationStore()
	})
}

func TestMemoryConversationStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryConversationStore()
	opened := time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)
	require.NoError(t, s.Open(ctx, model.Conversation{ID: "c1", CustomerID: "A", OpenedAt: opened}))
	require.NoError(t, s.UpsertFirstReceived(ctx, "c1", opened))

	got, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	*got.FirstReceivedAt = opened.Add(time.Hour)

	again, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, again.FirstReceivedAt.Equal(opened))
}

func TestMemoryEventStoreKeepsTimestampOrder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryEventStore()
	base := time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{3, 1, 2} {
		require.NoError(t, s.Add(ctx, model.Message{ID: offset.String(), Timestamp: base.Add(offset * time.Minute)}))
	}

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Timestamp.Before(all[1].Timestamp))
	assert.True(t, all[1].Timestamp.Before(all[2].Timestamp))
}
