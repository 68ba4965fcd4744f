package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NextMind-AI/inbox-analytics/model"
)

type messageRow struct {
	ID       string         `db:"id"`
	Channel  string         `db:"channel"`
	Sender   string         `db:"sender"`
	Text     string         `db:"text"`
	TS       int64          `db:"ts"`
	Outgoing bool           `db:"outgoing"`
	AgentID  sql.NullString `db:"agent_id"`
	Tag      sql.NullString `db:"tag"`
}

func (r messageRow) message() model.Message {
	return model.Message{
		ID:        r.ID,
		Channel:   model.Channel(r.Channel),
		Sender:    r.Sender,
		Text:      r.Text,
		Timestamp: fromNanos(r.TS),
		Outgoing:  r.Outgoing,
		AgentID:   fromNullString(r.AgentID),
		Tag:       fromNullString(r.Tag),
	}
}

type EventStore struct {
	d *DB
}

func (d *DB) Events() *EventStore {
	return &EventStore{d: d}
}

func (s *EventStore) Add(ctx context.Context, msg model.Message) error {
	row := messageRow{
		ID:       msg.ID,
		Channel:  string(msg.Channel),
		Sender:   msg.Sender,
		Text:     msg.Text,
		TS:       toNanos(msg.Timestamp),
		Outgoing: msg.Outgoing,
		AgentID:  nullString(msg.AgentID),
		Tag:      nullString(msg.Tag),
	}
	_, err := s.d.db.NamedExecContext(ctx, `insert into messages
		(id, channel, sender, text, ts, outgoing, agent_id, tag)
		values(:id, :channel, :sender, :text, :ts, :outgoing, :agent_id, :tag)`, row)
	if err != nil {
		return fmt.Errorf("inserting message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *EventStore) All(ctx context.Context) ([]model.Message, error) {
	var rows []messageRow
	err := s.d.db.SelectContext(ctx, &rows, `select id, channel, sender, text, ts, outgoing, agent_id, tag
		from messages order by ts, seq`)
	if err != nil {
		return nil, fmt.Errorf("selecting messages: %w", err)
	}
	return toMessages(rows), nil
}

func (s *EventStore) Range(ctx context.Context, from, to time.Time) ([]model.Message, error) {
	var rows []messageRow
	err := s.d.db.SelectContext(ctx, &rows, `select id, channel, sender, text, ts, outgoing, agent_id, tag
		from messages where ts >= ? and ts < ? order by ts, seq`, toNanos(from), toNanos(to))
	if err != nil {
		return nil, fmt.Errorf("selecting messages in range: %w", err)
	}
	return toMessages(rows), nil
}

func toMessages(rows []messageRow) []model.Message {
	out := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.message())
	}
	return out
}
