package model

import (
	"strconv"
	"time"
)

// Conversation groups the messages exchanged with one customer. The first
// received and first response timestamps are set once and never move.
type Conversation struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customer_id"`
	OpenedAt        time.Time  `json:"opened_at"`
	FirstReceivedAt *time.Time `json:"first_received_at"`
	FirstResponseAt *time.Time `json:"first_response_at"`
	ClosedAt        *time.Time `json:"closed_at"`
	Channel         Channel    `json:"channel"`
	AssignedAgentID *string    `json:"assigned_agent_id,omitempty"`
	MainTag         *string    `json:"main_tag,omitempty"`
}

// ConversationID builds the deterministic id of a conversation opened by
// sender at the given instant.
func ConversationID(sender string, openedAt time.Time) string {
	return "conv:" + sender + ":" + strconv.FormatInt(openedAt.UTC().Unix(), 10)
}

// FRTMinutes returns the first response time in whole minutes, floored.
// ok is false unless both timestamps are set.
func (c Conversation) FRTMinutes() (minutes int64, ok bool) {
	if c.FirstReceivedAt == nil || c.FirstResponseAt == nil {
		return 0, false
	}
	d := c.FirstResponseAt.Sub(*c.FirstReceivedAt)
	m := int64(d / time.Minute)
	if d%time.Minute < 0 {
		m--
	}
	return m, true
}

func (c Conversation) IsOpen() bool {
	return c.ClosedAt == nil
}
