// Package store defines the storage contracts of the inbox and provides the
// in-memory backing. Durable backings live in the redis and sqlstore
// packages.
package store

import (
	"context"
	"time"

	"github.com/NextMind-AI/inbox-analytics/model"
)

// EventStore is the append-only message log.
type EventStore interface {
	Add(ctx context.Context, msg model.Message) error
	// All returns every message. Callers must not rely on the order.
	All(ctx context.Context) ([]model.Message, error)
	// Range returns messages with from <= timestamp < to.
	Range(ctx context.Context, from, to time.Time) ([]model.Message, error)
}

// ConversationStore tracks conversations and the open conversation of each
// customer. Lookups of unknown ids return nil without error, and upserts or
// closes on unknown ids are no-ops.
type ConversationStore interface {
	// Open stores a new conversation and makes it the customer's open one.
	// An id that already exists is left untouched and
	// model.ErrConversationExists is returned.
	Open(ctx context.Context, conv model.Conversation) error
	Get(ctx context.Context, id string) (*model.Conversation, error)
	FindOpenByCustomer(ctx context.Context, customerID string) (*model.Conversation, error)
	UpsertFirstReceived(ctx context.Context, id string, at time.Time) error
	UpsertFirstResponse(ctx context.Context, id string, at time.Time) error
	// Close sets closed_at once; closing a closed conversation is a no-op.
	Close(ctx context.Context, id string, at time.Time) error
	All(ctx context.Context) ([]model.Conversation, error)
}
