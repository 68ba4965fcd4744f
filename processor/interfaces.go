package processor

import (
	"context"

	"github.com/NextMind-AI/inbox-analytics/delivery"
	"github.com/NextMind-AI/inbox-analytics/model"
	"github.com/NextMind-AI/inbox-analytics/tracker"
)

// Recorder attributes a message to a conversation and logs it.
type Recorder interface {
	Record(ctx context.Context, msg model.Message) (tracker.Outcome, error)
}

// Tagger proposes a tag for an untagged inbound message.
type Tagger interface {
	Tag(ctx context.Context, text string) (string, error)
}

type Sender interface {
	Send(ctx context.Context, req delivery.Request) (delivery.Result, error)
}

// ReadMarker acknowledges a provider message once it has been stored.
type ReadMarker interface {
	MarkMessageAsRead(ctx context.Context, messageID string) error
}

type Metrics interface {
	RecordMessage(channel, direction string, opened bool)
	RecordIngestFailure(reason string)
	RecordTagging(status string)
	RecordDelivery(channel string, success bool)
}
