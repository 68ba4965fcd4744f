package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/inbox-analytics/delivery"
	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/store"
	"github.com/NextMind-AI/inbox-analytics/tracker"
	"github.com/NextMind-AI/inbox-analytics/zone"
)

type fakeTagger struct {
	tag   string
	err   error
	calls int
}

func (f *fakeTagger) Tag(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.tag, f.err
}

type fakeSender struct {
	result delivery.Result
	err    error
	got    []delivery.Request
}

func (f *fakeSender) Send(_ context.Context, req delivery.Request) (delivery.Result, error) {
	f.got = append(f.got, req)
	return f.result, f.err
}

type fakeReadMarker struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeReadMarker) MarkMessageAsRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return nil
}

type fixture struct {
	conversations *store.MemoryConversationStore
	events        *store.MemoryEventStore
	tracker       *tracker.Tracker
}

func newFixture() fixture {
	convs := store.NewMemoryConversationStore()
	events := store.NewMemoryEventStore()
	return fixture{
		conversations: convs,
		events:        events,
		tracker:       tracker.New(convs, events, zone.Fixed()),
	}
}

func TestIngestOpensAndAnswersConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mp := NewMessageProcessor(f.tracker, &fakeSender{})

	ack, err := mp.Ingest(ctx, InboundMessage{
		Channel:   "whatsapp",
		Sender:    "+5491100000001",
		Message:   "hola",
		Timestamp: "2025-10-27T14:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, ack.OK)
	assert.True(t, ack.Opened)
	assert.Equal(t, "conv:+5491100000001:1761573600", ack.ConversationID)

	ack2, err := mp.Ingest(ctx, InboundMessage{
		Channel:   "whatsapp",
		Sender:    "+5491100000001",
		Message:   "buenas",
		Timestamp: "2025-10-27T14:05:30",
		Outgoing:  true,
	})
	require.NoError(t, err)
	assert.False(t, ack2.Opened)
	assert.Equal(t, ack.ConversationID, ack2.ConversationID)

	conv, err := f.conversations.Get(ctx, ack.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	frt, ok := conv.FRTMinutes()
	require.True(t, ok)
	assert.Equal(t, int64(5), frt)

	msgs, err := f.events.All(ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestIngestRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   InboundMessage
		want error
	}{
		{
			name: "unknown channel",
			in:   InboundMessage{Channel: "telegram", Sender: "a", Timestamp: "2025-10-27T14:00:00Z"},
			want: model.ErrUnknownChannel,
		},
		{
			name: "missing sender",
			in:   InboundMessage{Channel: "gmail", Sender: "  ", Timestamp: "2025-10-27T14:00:00Z"},
			want: model.ErrMissingField,
		},
		{
			name: "missing timestamp",
			in:   InboundMessage{Channel: "gmail", Sender: "a@b.c"},
			want: model.ErrMissingField,
		},
		{
			name: "malformed timestamp",
			in:   InboundMessage{Channel: "gmail", Sender: "a@b.c", Timestamp: "yesterday"},
			want: model.ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			mp := NewMessageProcessor(f.tracker, &fakeSender{})

			_, err := mp.Ingest(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err))
			assert.ErrorIs(t, err, tt.want)

			msgs, err := f.events.All(context.Background())
			require.NoError(t, err)
			assert.Empty(t, msgs)
		})
	}
}

func TestIngestTagging(t *testing.T) {
	ctx := context.Background()

	t.Run("tags untagged inbound", func(t *testing.T) {
		f := newFixture()
		tagger := &fakeTagger{tag: "envios"}
		mp := NewMessageProcessor(f.tracker, &fakeSender{}, WithTagger(tagger))

		ack, err := mp.Ingest(ctx, InboundMessage{Channel: "instagram", Sender: "@ana", Message: "donde esta mi pedido", Timestamp: "2025-10-28T10:00:00Z"})
		require.NoError(t, err)

		conv, err := f.conversations.Get(ctx, ack.ConversationID)
		require.NoError(t, err)
		require.NotNil(t, conv.MainTag)
		assert.Equal(t, "envios", *conv.MainTag)
	})

	t.Run("keeps explicit tag", func(t *testing.T) {
		f := newFixture()
		tagger := &fakeTagger{tag: "envios"}
		mp := NewMessageProcessor(f.tracker, &fakeSender{}, WithTagger(tagger))
		tag := "pagos"

		_, err := mp.Ingest(ctx, InboundMessage{Channel: "instagram", Sender: "@ana", Message: "x", Timestamp: "2025-10-28T10:00:00Z", Tag: &tag})
		require.NoError(t, err)
		assert.Zero(t, tagger.calls)
	})

	t.Run("tagging failure does not fail ingestion", func(t *testing.T) {
		f := newFixture()
		tagger := &fakeTagger{err: errors.New("rate limited")}
		mp := NewMessageProcessor(f.tracker, &fakeSender{}, WithTagger(tagger))

		ack, err := mp.Ingest(ctx, InboundMessage{Channel: "instagram", Sender: "@ana", Message: "x", Timestamp: "2025-10-28T10:00:00Z"})
		require.NoError(t, err)
		assert.True(t, ack.OK)

		conv, err := f.conversations.Get(ctx, ack.ConversationID)
		require.NoError(t, err)
		assert.Nil(t, conv.MainTag)
	})
}

func TestIngestMarksWhatsAppAsRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	marker := &fakeReadMarker{}
	mp := NewMessageProcessor(f.tracker, &fakeSender{}, WithReadMarker(marker))

	_, err := mp.Ingest(ctx, InboundMessage{Channel: "whatsapp", Sender: "+1", Timestamp: "2025-10-28T10:00:00Z", MessageUUID: "uuid-1"})
	require.NoError(t, err)
	_, err = mp.Ingest(ctx, InboundMessage{Channel: "gmail", Sender: "a@b.c", Timestamp: "2025-10-28T10:00:00Z", MessageUUID: "uuid-2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"uuid-1"}, marker.ids)
}

func TestSendRecordsOutgoingMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	now := time.Date(2025, 10, 28, 12, 0, 0, 0, time.UTC)
	sender := &fakeSender{result: delivery.Result{Success: true, MessageID: "msg-1"}}
	mp := NewMessageProcessor(f.tracker, sender, WithClock(func() time.Time { return now }))

	res, err := mp.Send(ctx, SendRequest{Channel: "gmail", To: "cliente@mail.com", Message: "hola", AgentID: "agent-7"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, sender.got, 1)
	assert.Equal(t, delivery.TypeText, sender.got[0].Type)

	msgs, err := f.events.All(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg-1", msgs[0].ID)
	assert.Equal(t, "cliente@mail.com", msgs[0].Sender)
	assert.True(t, msgs[0].Outgoing)
	assert.True(t, now.Equal(msgs[0].Timestamp))

	conv, err := f.conversations.FindOpenByCustomer(ctx, "cliente@mail.com")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.NotNil(t, conv.AssignedAgentID)
	assert.Equal(t, "agent-7", *conv.AssignedAgentID)
	assert.Nil(t, conv.FirstReceivedAt)
}

func TestSendFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sender := &fakeSender{result: delivery.Result{Success: false, Error: "quota"}}
	mp := NewMessageProcessor(f.tracker, sender)

	res, err := mp.Send(ctx, SendRequest{Channel: "instagram", To: "@ana", Message: "hola"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "quota", res.Error)

	msgs, err := f.events.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendRejectsUnknownChannel(t *testing.T) {
	f := newFixture()
	sender := &fakeSender{}
	mp := NewMessageProcessor(f.tracker, sender)

	_, err := mp.Send(context.Background(), SendRequest{Channel: "sms", To: "1", Message: "x"})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Empty(t, sender.got)
}
