package processor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/delivery"
	"github.com/NextMind-AI/inbox-analytics/model"
)

type MessageProcessor struct {
	recorder   Recorder
	sender     Sender
	tagger     Tagger
	readMarker ReadMarker
	metrics    Metrics
	now        func() time.Time
}

type Option func(*MessageProcessor)

func WithTagger(t Tagger) Option {
	return func(mp *MessageProcessor) { mp.tagger = t }
}

// WithReadMarker marks inbound WhatsApp messages as read after they are stored.
func WithReadMarker(r ReadMarker) Option {
	return func(mp *MessageProcessor) { mp.readMarker = r }
}

func WithMetrics(m Metrics) Option {
	return func(mp *MessageProcessor) { mp.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(mp *MessageProcessor) { mp.now = now }
}

func NewMessageProcessor(recorder Recorder, sender Sender, opts ...Option) *MessageProcessor {
	mp := &MessageProcessor{
		recorder: recorder,
		sender:   sender,
		metrics:  nopMetrics{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(mp)
	}
	return mp
}

// Ingest validates an inbound payload and records it against the sender's
// conversation.
func (mp *MessageProcessor) Ingest(ctx context.Context, in InboundMessage) (Ack, error) {
	msg, err := extractMessage(in)
	if err != nil {
		mp.metrics.RecordIngestFailure(failureReason(err))
		log.Warn().
			Err(err).
			Str("channel", in.Channel).
			Str("sender", in.Sender).
			Msg("Rejected inbound message")
		return Ack{}, err
	}

	if !msg.Outgoing && msg.Tag == nil {
		msg.Tag = mp.tag(ctx, msg)
	}

	out, err := mp.recorder.Record(ctx, msg)
	if err != nil {
		mp.metrics.RecordIngestFailure(failureReason(err))
		log.Error().
			Err(err).
			Str("sender", msg.Sender).
			Msg("Error recording message")
		return Ack{}, err
	}
	mp.metrics.RecordMessage(msg.Channel.String(), msg.Direction(), out.Opened)

	if !msg.Outgoing && msg.Channel == model.ChannelWhatsApp {
		mp.markAsRead(ctx, in.MessageUUID)
	}

	log.Info().
		Str("conversation_id", out.ConversationID).
		Str("sender", msg.Sender).
		Str("channel", msg.Channel.String()).
		Str("direction", msg.Direction()).
		Bool("opened", out.Opened).
		Msg("Message ingested")

	return Ack{OK: true, ConversationID: out.ConversationID, Opened: out.Opened}, nil
}

// Send forwards an agent reply through the delivery services and, once the
// service accepts it, records it as an outgoing message stamped with the
// current time.
func (mp *MessageProcessor) Send(ctx context.Context, req SendRequest) (delivery.Result, error) {
	channel, err := model.ParseChannel(req.Channel)
	if err != nil {
		return delivery.Result{}, err
	}
	msgType := delivery.MessageType(req.MessageType)
	if msgType == "" {
		msgType = delivery.TypeText
	}

	res, err := mp.sender.Send(ctx, delivery.Request{
		Channel:  channel,
		To:       req.To,
		Text:     req.Message,
		Type:     msgType,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		return delivery.Result{}, err
	}
	mp.metrics.RecordDelivery(channel.String(), res.Success)
	if !res.Success {
		log.Warn().
			Str("channel", channel.String()).
			Str("to", req.To).
			Str("error", res.Error).
			Msg("Delivery service rejected message")
		return res, nil
	}

	msg := model.Message{
		ID:        res.MessageID,
		Channel:   channel,
		Sender:    req.To,
		Text:      req.Message,
		Timestamp: mp.now().UTC(),
		Outgoing:  true,
	}
	if msg.Text == "" {
		msg.Text = req.MediaURL
	}
	if req.AgentID != "" {
		agent := req.AgentID
		msg.AgentID = &agent
	}

	out, err := mp.recorder.Record(ctx, msg)
	if err != nil {
		// The message already left; the caller still gets the provider result.
		mp.metrics.RecordIngestFailure(failureReason(err))
		log.Error().
			Err(err).
			Str("message_id", res.MessageID).
			Str("to", req.To).
			Msg("Error recording sent message")
		return res, nil
	}
	mp.metrics.RecordMessage(channel.String(), msg.Direction(), out.Opened)

	log.Info().
		Str("message_id", res.MessageID).
		Str("conversation_id", out.ConversationID).
		Str("channel", channel.String()).
		Msg("Message sent")

	return res, nil
}

func (mp *MessageProcessor) tag(ctx context.Context, msg model.Message) *string {
	if mp.tagger == nil || msg.Text == "" {
		return nil
	}
	tag, err := mp.tagger.Tag(ctx, msg.Text)
	if err != nil {
		mp.metrics.RecordTagging("failed")
		log.Warn().
			Err(err).
			Str("sender", msg.Sender).
			Msg("Error tagging message")
		return nil
	}
	mp.metrics.RecordTagging("tagged")
	return &tag
}

func (mp *MessageProcessor) markAsRead(ctx context.Context, messageUUID string) {
	if mp.readMarker == nil || messageUUID == "" {
		return
	}
	if err := mp.readMarker.MarkMessageAsRead(ctx, messageUUID); err != nil {
		log.Error().
			Err(err).
			Str("message_uuid", messageUUID).
			Msg("Error marking message as read")
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordMessage(string, string, bool) {}
func (nopMetrics) RecordIngestFailure(string)         {}
func (nopMetrics) RecordTagging(string)               {}
func (nopMetrics) RecordDelivery(string, bool)        {}
