package vonage

type Config struct {
	VonageJWT                 string
	GeospecificMessagesAPIURL string
	MessagesAPIURL            string
	SenderID                  string
}

type Context struct {
	MessageUUID string `json:"message_uuid"`
}

type Media struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type WhatsAppMessage struct {
	To          string   `json:"to"`
	From        string   `json:"from"`
	Channel     string   `json:"channel"`
	MessageType string   `json:"message_type"`
	Text        string   `json:"text,omitempty"`
	Image       *Media   `json:"image,omitempty"`
	Audio       *Media   `json:"audio,omitempty"`
	Video       *Media   `json:"video,omitempty"`
	File        *Media   `json:"file,omitempty"`
	Context     *Context `json:"context,omitempty"`
}

type MessageResponse struct {
	MessageUUID string `json:"message_uuid"`
}

type MarkAsReadPayload struct {
	Status string `json:"status"`
}
