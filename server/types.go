package server

import (
	"time"

	"github.com/NextMind-AI/inbox-analytics/model"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	Store            string `json:"store"`
	Timezone         string `json:"timezone"`
	LiveSegmentation string `json:"live_segmentation,omitempty"`
}

type SnapshotResponse struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ConversationView is a conversation as listed by the inbox API.
type ConversationView struct {
	model.Conversation
	Open       bool   `json:"open"`
	FRTMinutes *int64 `json:"frt_minutes"`
}

func newConversationView(c model.Conversation) ConversationView {
	v := ConversationView{Conversation: c, Open: c.IsOpen()}
	if frt, ok := c.FRTMinutes(); ok {
		v.FRTMinutes = &frt
	}
	return v
}

type ConversationList struct {
	Conversations []ConversationView `json:"conversations"`
	Total         int                `json:"total"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
}

type MessageList struct {
	Messages []model.Message `json:"messages"`
	Total    int             `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

type ChannelInfo struct {
	Name              model.Channel `json:"name"`
	DisplayName       string        `json:"display_name"`
	DeliveryAvailable bool          `json:"delivery_available"`
}

type ChannelStats struct {
	Channel           model.Channel `json:"channel"`
	Conversations     int           `json:"conversations"`
	OpenConversations int           `json:"open_conversations"`
	Messages          int           `json:"messages"`
	Inbound           int           `json:"inbound"`
	Outbound          int           `json:"outbound"`
	FRTAvgMinutes     *float64      `json:"frt_avg_min"`
}
