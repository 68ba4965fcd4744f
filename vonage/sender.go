package vonage

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/delivery"
)

// Send delivers a WhatsApp request through the Messages API.
func (c *Client) Send(ctx context.Context, req delivery.Request) (delivery.Result, error) {
	to := delivery.NormalizeWhatsAppNumber(req.To)

	var (
		resp *MessageResponse
		err  error
	)
	if req.Type == delivery.TypeText {
		resp, err = c.SendWhatsAppTextMessage(ctx, to, req.Text)
	} else {
		resp, err = c.SendWhatsAppMediaMessage(ctx, to, string(req.Type), req.MediaURL, req.Text)
	}
	if err != nil {
		return delivery.Result{}, err
	}

	log.Info().
		Str("message_uuid", resp.MessageUUID).
		Str("to", to).
		Str("message_type", string(req.Type)).
		Msg("WhatsApp message sent")

	return delivery.Result{Success: true, MessageID: resp.MessageUUID}, nil
}
