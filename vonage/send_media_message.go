package vonage

import (
	"context"
	"fmt"
)

// SendWhatsAppMediaMessage sends an image, audio, video or file message.
// The caption is ignored for audio, which WhatsApp does not caption.
func (c *Client) SendWhatsAppMediaMessage(ctx context.Context, toNumber, mediaType, mediaURL, caption string) (*MessageResponse, error) {
	message, err := c.createWhatsAppMediaMessage(toNumber, mediaType, mediaURL, caption)
	if err != nil {
		return nil, err
	}
	return c.sendMessageRequest(ctx, "POST", c.config.MessagesAPIURL, message)
}

func (c *Client) createWhatsAppMediaMessage(toNumber, mediaType, mediaURL, caption string) (WhatsAppMessage, error) {
	message := WhatsAppMessage{
		To:          toNumber,
		From:        c.config.SenderID,
		Channel:     "whatsapp",
		MessageType: mediaType,
	}
	media := &Media{URL: mediaURL, Caption: caption}

	switch mediaType {
	case "image":
		message.Image = media
	case "audio":
		media.Caption = ""
		message.Audio = media
	case "video":
		message.Video = media
	case "file":
		message.File = media
	default:
		return WhatsAppMessage{}, fmt.Errorf("unsupported media type %q", mediaType)
	}
	return message, nil
}
