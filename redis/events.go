package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/model"
)

// EventStore keeps the message log in a sorted set scored by the message
// timestamp in microseconds. Members are "<nonce>|<json>" so that
// identical messages appended twice are both kept.
type EventStore struct {
	c *Client
}

func (c *Client) Events() *EventStore {
	return &EventStore{c: c}
}

func (s *EventStore) Add(ctx context.Context, msg model.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message %s: %w", msg.ID, err)
	}

	err = s.c.rdb.ZAdd(ctx, s.c.key("messages"), redis.Z{
		Score:  float64(msg.Timestamp.UnixMicro()),
		Member: uuid.NewString() + memberSep + string(payload),
	}).Err()
	if err != nil {
		return fmt.Errorf("zadd message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *EventStore) All(ctx context.Context) ([]model.Message, error) {
	members, err := s.c.rdb.ZRange(ctx, s.c.key("messages"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange messages: %w", err)
	}
	return decodeMessages(members), nil
}

// Range narrows by score first, then applies the exact half-open bound since
// scores drop sub-microsecond precision.
func (s *EventStore) Range(ctx context.Context, from, to time.Time) ([]model.Message, error) {
	if !from.Before(to) {
		return []model.Message{}, nil
	}

	members, err := s.c.rdb.ZRangeByScore(ctx, s.c.key("messages"), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMicro(), 10),
		Max: strconv.FormatInt(to.UnixMicro(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrangebyscore messages: %w", err)
	}

	all := decodeMessages(members)
	out := all[:0]
	for _, m := range all {
		if !m.Timestamp.Before(from) && m.Timestamp.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

const memberSep = "|"

func decodeMessages(members []string) []model.Message {
	out := make([]model.Message, 0, len(members))
	for _, member := range members {
		payload := member
		if _, rest, ok := strings.Cut(member, memberSep); ok && !strings.HasPrefix(member, "{") {
			payload = rest
		}

		var msg model.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			log.Warn().Err(err).Msg("Skipping undecodable message in redis log")
			continue
		}
		out = append(out, msg)
	}
	return out
}
