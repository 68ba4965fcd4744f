package model

import "time"

// Message is a single inbound or outbound message. Messages are never
// mutated after they are appended to the event store.
type Message struct {
	ID        string    `json:"id"`
	Channel   Channel   `json:"channel"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Outgoing  bool      `json:"outgoing"`
	AgentID   *string   `json:"agent_id,omitempty"`
	Tag       *string   `json:"tag,omitempty"`
}

// Direction is "out" for agent replies and "in" for customer messages.
func (m Message) Direction() string {
	if m.Outgoing {
		return "out"
	}
	return "in"
}
