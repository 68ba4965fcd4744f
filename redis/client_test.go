package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/redis"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/store/storetest"
)

func newClient(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewFromRDB(rdb)
}

func TestEventStore(t *testing.T) {
	storetest.RunEventStore(t, func(t *testing.T) store.EventStore {
		return newClient(t).Events()
	})
}

func TestConversationStore(t *testing.T) {
	storetest.RunConversationStore(t, func(t *testing.T) store.ConversationStore {
		return newClient(t).Conversations()
	})
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.NewClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestPrefixesAreIsolated(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	other := c.WithPrefix("other:")

	conv := storetestConversation()
	require.NoError(t, c.Conversations().Open(ctx, conv))

	got, err := other.Conversations().Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func storetestConversation() model.Conversation {
	return model.Conversation{
		ID:         "conv:A:1761573600",
		CustomerID: "A",
		OpenedAt:   time.Unix(1761573600, 0).UTC(),
		Channel:    model.ChannelWhatsApp,
	}
}
