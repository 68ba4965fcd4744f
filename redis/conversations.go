package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NextMind-AI/inbox-analytics/model"
)

const (
	fieldID              = "id"
	fieldCustomerID      = "customer_id"
	fieldChannel         = "channel"
	fieldOpenedAt        = "opened_at"
	fieldFirstReceivedAt = "first_received_at"
	fieldFirstResponseAt = "first_response_at"
	fieldClosedAt        = "closed_at"
	fieldAssignedAgentID = "assigned_agent_id"
	fieldMainTag         = "main_tag"
)

// setOnce writes a hash field only when the hash exists and the field is
// still unset.
var setOnce = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
return redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2])
`)

// openConversation creates the hash only when the id is unused, then
// registers it and points the customer at it.
var openConversation = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('SADD', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[3], ARGV[2], ARGV[1])
return 1
`)

// closeConversation stamps closed_at once and drops the customer's open pointer
// only while it still names this conversation.
var closeConversation = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSETNX', KEYS[1], 'closed_at', ARGV[2])
local customer = redis.call('HGET', KEYS[1], 'customer_id')
if customer and redis.call('HGET', KEYS[2], customer) == ARGV[1] then
  redis.call('HDEL', KEYS[2], customer)
end
return 1
`)

// ConversationStore keeps each conversation in its own hash, the set of all
// ids, and a customer to open conversation index hash.
type ConversationStore struct {
	c *Client
}

func (c *Client) Conversations() *ConversationStore {
	return &ConversationStore{c: c}
}

func (s *ConversationStore) conversationKey(id string) string {
	return s.c.key("conversation", id)
}

func (s *ConversationStore) Open(ctx context.Context, conv model.Conversation) error {
	keys := []string{
		s.conversationKey(conv.ID),
		s.c.key("conversations"),
		s.c.key("conversations", "open"),
	}
	args := []any{conv.ID, conv.CustomerID}
	for field, value := range encodeConversation(conv) {
		args = append(args, field, value)
	}

	created, err := openConversation.Run(ctx, s.c.rdb, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("open conversation %s: %w", conv.ID, err)
	}
	if created == 0 {
		return fmt.Errorf("open conversation %s: %w", conv.ID, model.ErrConversationExists)
	}
	return nil
}

func (s *ConversationStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	fields, err := s.c.rdb.HGetAll(ctx, s.conversationKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall conversation %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	conv, err := decodeConversation(fields)
	if err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (s *ConversationStore) FindOpenByCustomer(ctx context.Context, customerID string) (*model.Conversation, error) {
	id, err := s.c.rdb.HGet(ctx, s.c.key("conversations", "open"), customerID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hget open conversation for %s: %w", customerID, err)
	}
	return s.Get(ctx, id)
}

func (s *ConversationStore) UpsertFirstReceived(ctx context.Context, id string, at time.Time) error {
	return s.setOnce(ctx, id, fieldFirstReceivedAt, at)
}

func (s *ConversationStore) UpsertFirstResponse(ctx context.Context, id string, at time.Time) error {
	return s.setOnce(ctx, id, fieldFirstResponseAt, at)
}

func (s *ConversationStore) setOnce(ctx context.Context, id, field string, at time.Time) error {
	keys := []string{s.conversationKey(id)}
	if err := setOnce.Run(ctx, s.c.rdb, keys, field, formatTime(at)).Err(); err != nil {
		return fmt.Errorf("set %s on %s: %w", field, id, err)
	}
	return nil
}

func (s *ConversationStore) Close(ctx context.Context, id string, at time.Time) error {
	keys := []string{s.conversationKey(id), s.c.key("conversations", "open")}
	if err := closeConversation.Run(ctx, s.c.rdb, keys, id, formatTime(at)).Err(); err != nil {
		return fmt.Errorf("close conversation %s: %w", id, err)
	}
	return nil
}

func (s *ConversationStore) All(ctx context.Context) ([]model.Conversation, error) {
	ids, err := s.c.rdb.SMembers(ctx, s.c.key("conversations")).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers conversations: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.conversationKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	out := make([]model.Conversation, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		conv, err := decodeConversation(fields)
		if err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", ids[i], err)
		}
		out = append(out, conv)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeConversation(conv model.Conversation) map[string]any {
	fields := map[string]any{
		fieldID:         conv.ID,
		fieldCustomerID: conv.CustomerID,
		fieldChannel:    string(conv.Channel),
		fieldOpenedAt:   formatTime(conv.OpenedAt),
	}
	if conv.FirstReceivedAt != nil {
		fields[fieldFirstReceivedAt] = formatTime(*conv.FirstReceivedAt)
	}
	if conv.FirstResponseAt != nil {
		fields[fieldFirstResponseAt] = formatTime(*conv.FirstResponseAt)
	}
	if conv.ClosedAt != nil {
		fields[fieldClosedAt] = formatTime(*conv.ClosedAt)
	}
	if conv.AssignedAgentID != nil {
		fields[fieldAssignedAgentID] = *conv.AssignedAgentID
	}
	if conv.MainTag != nil {
		fields[fieldMainTag] = *conv.MainTag
	}
	return fields
}

func decodeConversation(fields map[string]string) (model.Conversation, error) {
	conv := model.Conversation{
		ID:         fields[fieldID],
		CustomerID: fields[fieldCustomerID],
		Channel:    model.Channel(fields[fieldChannel]),
	}

	opened, err := time.Parse(time.RFC3339Nano, fields[fieldOpenedAt])
	if err != nil {
		return conv, fmt.Errorf("opened_at: %w", err)
	}
	conv.OpenedAt = opened

	for field, dst := range map[string]**time.Time{
		fieldFirstReceivedAt: &conv.FirstReceivedAt,
		fieldFirstResponseAt: &conv.FirstResponseAt,
		fieldClosedAt:        &conv.ClosedAt,
	} {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return conv, fmt.Errorf("%s: %w", field, err)
		}
		*dst = &t
	}

	if v, ok := fields[fieldAssignedAgentID]; ok {
		conv.AssignedAgentID = &v
	}
	if v, ok := fields[fieldMainTag]; ok {
		conv.MainTag = &v
	}
	return conv, nil
}
