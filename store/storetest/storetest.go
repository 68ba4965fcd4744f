// Package storetest holds the behavioural contract every store backing must
// satisfy. Backings call RunEventStore and RunConversationStore from their
// own tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/store"
)

var base = time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)

func message(sender string, offset time.Duration, outgoing bool) model.Message {
	return model.Message{
		ID:        uuid.NewString(),
		Channel:   model.ChannelWhatsApp,
		Sender:    sender,
		Text:      "hola",
		Timestamp: base.Add(offset),
		Outgoing:  outgoing,
	}
}

func ids(msgs []model.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	sort.Strings(out)
	return out
}

// RunEventStore exercises the append-only log contract.
func RunEventStore(t *testing.T, newStore func(t *testing.T) store.EventStore) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		s := newStore(t)
		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		ranged, err := s.Range(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, ranged)
	})

	t.Run("AddAndAll", func(t *testing.T) {
		s := newStore(t)
		agent := "agent-7"
		tag := "envios"
		m1 := message("A", 0, false)
		m2 := message("A", 5*time.Minute, true)
		m2.AgentID = &agent
		m2.Tag = &tag
		m3 := message("B", -time.Hour, false)
		m3.Channel = model.ChannelGmail

		for _, m := range []model.Message{m1, m2, m3} {
			require.NoError(t, s.Add(ctx, m))
		}

		all, err := s.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, ids([]model.Message{m1, m2, m3}), ids(all))

		for _, got := range all {
			if got.ID != m2.ID {
				continue
			}
			assert.True(t, got.Timestamp.Equal(m2.Timestamp))
			assert.True(t, got.Outgoing)
			assert.Equal(t, model.ChannelWhatsApp, got.Channel)
			assert.Equal(t, "A", got.Sender)
			assert.Equal(t, "hola", got.Text)
			require.NotNil(t, got.AgentID)
			assert.Equal(t, agent, *got.AgentID)
			require.NotNil(t, got.Tag)
			assert.Equal(t, tag, *got.Tag)
		}
	})

	t.Run("IdenticalMessagesAreKept", func(t *testing.T) {
		s := newStore(t)
		m := message("A", 0, false)
		dup := m
		dup.ID = uuid.NewString()
		require.NoError(t, s.Add(ctx, m))
		require.NoError(t, s.Add(ctx, dup))

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("SameMessageTwiceIsKept", func(t *testing.T) {
		s := newStore(t)
		m := message("A", 0, false)
		require.NoError(t, s.Add(ctx, m))
		require.NoError(t, s.Add(ctx, m))

		all, err := s.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{m.ID, m.ID}, ids(all))

		ranged, err := s.Range(ctx, base, base.Add(time.Second))
		require.NoError(t, err)
		assert.Len(t, ranged, 2)
	})

	t.Run("RangeIsHalfOpen", func(t *testing.T) {
		s := newStore(t)
		before := message("A", -time.Second, false)
		atFrom := message("A", 0, false)
		inside := message("B", 30*time.Minute, true)
		atTo := message("C", time.Hour, false)
		for _, m := range []model.Message{atTo, inside, before, atFrom} {
			require.NoError(t, s.Add(ctx, m))
		}

		got, err := s.Range(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, ids([]model.Message{atFrom, inside}), ids(got))
	})

	t.Run("ConcurrentAdds", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Add(ctx, message("A", time.Duration(i)*time.Second, i%2 == 0)))
			}(i)
		}
		wg.Wait()

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 20)
	})
}

func conversation(id, customer string, openedAt time.Time) model.Conversation {
	return model.Conversation{
		ID:         id,
		CustomerID: customer,
		OpenedAt:   openedAt,
		Channel:    model.ChannelWhatsApp,
	}
}

// RunConversationStore exercises the conversation tracking contract.
func RunConversationStore(t *testing.T, newStore func(t *testing.T) store.ConversationStore) {
	ctx := context.Background()

	t.Run("OpenAndFind", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))

		got, err := s.FindOpenByCustomer(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "c1", got.ID)
		assert.Equal(t, "A", got.CustomerID)
		assert.Equal(t, model.ChannelWhatsApp, got.Channel)
		assert.True(t, got.OpenedAt.Equal(base))
		assert.Nil(t, got.FirstReceivedAt)
		assert.Nil(t, got.FirstResponseAt)
		assert.Nil(t, got.ClosedAt)

		byID, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "c1", byID.ID)
	})

	t.Run("MissingLookupsReturnNil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.FindOpenByCustomer(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)

		byID, err := s.Get(ctx, "conv:none:0")
		require.NoError(t, err)
		assert.Nil(t, byID)
	})

	t.Run("OptionalFieldsRoundTrip", func(t *testing.T) {
		s := newStore(t)
		agent := "agent-1"
		tag := "pagos"
		c := conversation("c1", "A", base)
		c.Channel = model.ChannelInstagram
		c.AssignedAgentID = &agent
		c.MainTag = &tag
		require.NoError(t, s.Open(ctx, c))

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.ChannelInstagram, got.Channel)
		require.NotNil(t, got.AssignedAgentID)
		assert.Equal(t, agent, *got.AssignedAgentID)
		require.NotNil(t, got.MainTag)
		assert.Equal(t, tag, *got.MainTag)
	})

	t.Run("SetOnceTimestamps", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))

		first := base.Add(time.Minute)
		second := base.Add(time.Hour)
		require.NoError(t, s.UpsertFirstReceived(ctx, "c1", first))
		require.NoError(t, s.UpsertFirstReceived(ctx, "c1", second))
		require.NoError(t, s.UpsertFirstResponse(ctx, "c1", second))
		require.NoError(t, s.UpsertFirstResponse(ctx, "c1", second.Add(time.Hour)))

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, got.FirstReceivedAt)
		require.NotNil(t, got.FirstResponseAt)
		assert.True(t, got.FirstReceivedAt.Equal(first))
		assert.True(t, got.FirstResponseAt.Equal(second))
	})

	t.Run("UpsertUnknownIsNoop", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.UpsertFirstReceived(ctx, "ghost", base))
		require.NoError(t, s.UpsertFirstResponse(ctx, "ghost", base))
		require.NoError(t, s.Close(ctx, "ghost", base))

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("OpenOverwritesPointer", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))
		require.NoError(t, s.Open(ctx, conversation("c2", "A", base.Add(24*time.Hour))))

		got, err := s.FindOpenByCustomer(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "c2", got.ID)

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Close", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))
		closedAt := base.Add(2 * time.Hour)
		require.NoError(t, s.Close(ctx, "c1", closedAt))

		got, err := s.FindOpenByCustomer(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, got)

		byID, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, byID)
		require.NotNil(t, byID.ClosedAt)
		assert.True(t, byID.ClosedAt.Equal(closedAt))
	})

	t.Run("CloseTwiceKeepsFirstClosedAt", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))
		closedAt := base.Add(time.Hour)
		require.NoError(t, s.Close(ctx, "c1", closedAt))
		require.NoError(t, s.Close(ctx, "c1", closedAt.Add(time.Hour)))

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.ClosedAt)
		assert.True(t, got.ClosedAt.Equal(closedAt))
	})

	t.Run("OpenExistingIDKeepsStoredFields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))
		responded := base.Add(time.Minute)
		closedAt := base.Add(2 * time.Minute)
		require.NoError(t, s.UpsertFirstResponse(ctx, "c1", responded))
		require.NoError(t, s.Close(ctx, "c1", closedAt))

		err := s.Open(ctx, conversation("c1", "A", base))
		require.ErrorIs(t, err, model.ErrConversationExists)

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.FirstResponseAt)
		require.NotNil(t, got.ClosedAt)
		assert.True(t, got.FirstResponseAt.Equal(responded))
		assert.True(t, got.ClosedAt.Equal(closedAt))

		open, err := s.FindOpenByCustomer(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, open)
	})

	t.Run("CloseStaleConversationKeepsNewPointer", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))
		require.NoError(t, s.Open(ctx, conversation("c2", "A", base.Add(time.Hour))))
		require.NoError(t, s.Close(ctx, "c1", base.Add(2*time.Hour)))

		got, err := s.FindOpenByCustomer(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "c2", got.ID)
	})

	t.Run("ConcurrentSetOnce", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Open(ctx, conversation("c1", "A", base)))

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.UpsertFirstResponse(ctx, "c1", base.Add(time.Duration(i+1)*time.Minute)))
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, got.FirstResponseAt)
		winner := *got.FirstResponseAt

		require.NoError(t, s.UpsertFirstResponse(ctx, "c1", base))
		again, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, again.FirstResponseAt.Equal(winner))
	})
}
