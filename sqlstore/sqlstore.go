// Package sqlstore is the SQLite backing of the event and conversation
// stores.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type DB struct {
	db *sqlx.DB
}

// Open connects to the sqlite database named by dsn and creates the tables
// when missing. A bare path is accepted as well as a file: URI.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite serialises writers anyway; one connection keeps shared
	// in-memory databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	d := &DB{db: db}
	if err := d.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("SQLite store ready")
	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) createTables(ctx context.Context) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"messages", `create table if not exists messages(
			seq       integer primary key autoincrement,
			id        text not null,
			channel   text not null,
			sender    text not null,
			text      text not null,
			ts        integer not null,
			outgoing  boolean not null,
			agent_id  text null,
			tag       text null
		)`},
		{"messages_ts", `create index if not exists messages_ts on messages(ts)`},
		{"conversations", `create table if not exists conversations(
			id                text not null primary key,
			customer_id       text not null,
			channel           text not null,
			opened_at         integer not null,
			first_received_at integer null,
			first_response_at integer null,
			closed_at         integer null,
			assigned_agent_id text null,
			main_tag          text null
		)`},
		{"open_conversations", `create table if not exists open_conversations(
			customer_id     text not null primary key,
			conversation_id text not null
		)`},
	}

	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s.sql); err != nil {
			return fmt.Errorf("creating %s: %w", s.name, err)
		}
	}
	return nil
}

func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
