package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NextMind-AI/inbox-analytics/model"
)

type conversationRow struct {
	ID              string         `db:"id"`
	CustomerID      string         `db:"customer_id"`
	Channel         string         `db:"channel"`
	OpenedAt        int64          `db:"opened_at"`
	FirstReceivedAt sql.NullInt64  `db:"first_received_at"`
	FirstResponseAt sql.NullInt64  `db:"first_response_at"`
	ClosedAt        sql.NullInt64  `db:"closed_at"`
	AssignedAgentID sql.NullString `db:"assigned_agent_id"`
	MainTag         sql.NullString `db:"main_tag"`
}

func (r conversationRow) conversation() model.Conversation {
	return model.Conversation{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		Channel:         model.Channel(r.Channel),
		OpenedAt:        fromNanos(r.OpenedAt),
		FirstReceivedAt: fromNullNanos(r.FirstReceivedAt),
		FirstResponseAt: fromNullNanos(r.FirstResponseAt),
		ClosedAt:        fromNullNanos(r.ClosedAt),
		AssignedAgentID: fromNullString(r.AssignedAgentID),
		MainTag:         fromNullString(r.MainTag),
	}
}

const conversationColumns = `id, customer_id, channel, opened_at, first_received_at,
	first_response_at, closed_at, assigned_agent_id, main_tag`

type ConversationStore struct {
	d *DB
}

func (d *DB) Conversations() *ConversationStore {
	return &ConversationStore{d: d}
}

func (s *ConversationStore) Open(ctx context.Context, conv model.Conversation) error {
	row := conversationRow{
		ID:              conv.ID,
		CustomerID:      conv.CustomerID,
		Channel:         string(conv.Channel),
		OpenedAt:        toNanos(conv.OpenedAt),
		FirstReceivedAt: nullNanos(conv.FirstReceivedAt),
		FirstResponseAt: nullNanos(conv.FirstResponseAt),
		ClosedAt:        nullNanos(conv.ClosedAt),
		AssignedAgentID: nullString(conv.AssignedAgentID),
		MainTag:         nullString(conv.MainTag),
	}

	tx, err := s.d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning open: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `insert into conversations (`+conversationColumns+`)
		values(:id, :customer_id, :channel, :opened_at, :first_received_at,
		:first_response_at, :closed_at, :assigned_agent_id, :main_tag)
		on conflict(id) do nothing`, row)
	if err != nil {
		return fmt.Errorf("inserting conversation %s: %w", conv.ID, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting conversation %s: %w", conv.ID, err)
	}
	if inserted == 0 {
		return fmt.Errorf("inserting conversation %s: %w", conv.ID, model.ErrConversationExists)
	}

	_, err = tx.ExecContext(ctx, `insert into open_conversations (customer_id, conversation_id)
		values(?, ?)
		on conflict(customer_id) do update set conversation_id = excluded.conversation_id`,
		conv.CustomerID, conv.ID)
	if err != nil {
		return fmt.Errorf("indexing open conversation %s: %w", conv.ID, err)
	}

	return tx.Commit()
}

func (s *ConversationStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	var row conversationRow
	err := s.d.db.GetContext(ctx, &row, `select `+conversationColumns+` from conversations where id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching conversation %s: %w", id, err)
	}
	conv := row.conversation()
	return &conv, nil
}

func (s *ConversationStore) FindOpenByCustomer(ctx context.Context, customerID string) (*model.Conversation, error) {
	var row conversationRow
	err := s.d.db.GetContext(ctx, &row, `select c.id, c.customer_id, c.channel, c.opened_at,
		c.first_received_at, c.first_response_at, c.closed_at, c.assigned_agent_id, c.main_tag
		from open_conversations o join conversations c on c.id = o.conversation_id
		where o.customer_id = ?`, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching open conversation for %s: %w", customerID, err)
	}
	conv := row.conversation()
	return &conv, nil
}

func (s *ConversationStore) UpsertFirstReceived(ctx context.Context, id string, at time.Time) error {
	_, err := s.d.db.ExecContext(ctx, `update conversations set first_received_at = ?
		where id = ? and first_received_at is null`, toNanos(at), id)
	if err != nil {
		return fmt.Errorf("setting first_received_at on %s: %w", id, err)
	}
	return nil
}

func (s *ConversationStore) UpsertFirstResponse(ctx context.Context, id string, at time.Time) error {
	_, err := s.d.db.ExecContext(ctx, `update conversations set first_response_at = ?
		where id = ? and first_response_at is null`, toNanos(at), id)
	if err != nil {
		return fmt.Errorf("setting first_response_at on %s: %w", id, err)
	}
	return nil
}

func (s *ConversationStore) Close(ctx context.Context, id string, at time.Time) error {
	tx, err := s.d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning close: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `update conversations set closed_at = ? where id = ? and closed_at is null`, toNanos(at), id); err != nil {
		return fmt.Errorf("closing conversation %s: %w", id, err)
	}
	_, err = tx.ExecContext(ctx, `delete from open_conversations
		where conversation_id = ?
		and customer_id = (select customer_id from conversations where id = ?)`, id, id)
	if err != nil {
		return fmt.Errorf("unindexing conversation %s: %w", id, err)
	}

	return tx.Commit()
}

func (s *ConversationStore) All(ctx context.Context) ([]model.Conversation, error) {
	var rows []conversationRow
	if err := s.d.db.SelectContext(ctx, &rows, `select `+conversationColumns+` from conversations`); err != nil {
		return nil, fmt.Errorf("selecting conversations: %w", err)
	}
	out := make([]model.Conversation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.conversation())
	}
	return out, nil
}
