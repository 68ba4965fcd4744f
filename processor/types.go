package processor

// InboundMessage is the ingestion payload accepted from channel webhooks
// and from the HTTP API.
type InboundMessage struct {
	Channel     string  `json:"channel"`
	Sender      string  `json:"sender"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp"`
	Outgoing    bool    `json:"outgoing"`
	AgentID     *string `json:"agent_id,omitempty"`
	Tag         *string `json:"tag,omitempty"`
	MessageUUID string  `json:"message_uuid,omitempty"`
}

type Ack struct {
	OK             bool   `json:"ok"`
	ConversationID string `json:"conversation_id,omitempty"`
	Opened         bool   `json:"opened"`
}

type SendRequest struct {
	Channel     string `json:"channel"`
	To          string `json:"to"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
	MediaURL    string `json:"media_url,omitempty"`
	AgentID     string `json:"agent_id,omitempty"`
}
