package vonage

import "context"

func (c *Client) SendWhatsAppTextMessage(ctx context.Context, toNumber, text string) (*MessageResponse, error) {
	message := c.createWhatsAppMessage(toNumber, text, nil)
	return c.sendMessageRequest(ctx, "POST", c.config.MessagesAPIURL, message)
}

func (c *Client) SendWhatsAppReplyMessage(ctx context.Context, toNumber, text, messageUUID string) (*MessageResponse, error) {
	message := c.createWhatsAppMessage(toNumber, text, &Context{MessageUUID: messageUUID})
	return c.sendMessageRequest(ctx, "POST", c.config.MessagesAPIURL, message)
}

func (c *Client) createWhatsAppMessage(toNumber, text string, context *Context) WhatsAppMessage {
	return WhatsAppMessage{
		To:          toNumber,
		From:        c.config.SenderID,
		Channel:     "whatsapp",
		MessageType: "text",
		Text:        text,
		Context:     context,
	}
}
