// Package delivery forwards outgoing messages to the per-channel services
// that talk to WhatsApp, Gmail and Instagram.
package delivery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/inbox-analytics/model"
)

type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeAudio MessageType = "audio"
	TypeVideo MessageType = "video"
	TypeFile  MessageType = "file"
)

func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeAudio, TypeVideo, TypeFile:
		return true
	}
	return false
}

// NeedsMedia reports whether the type carries a media URL instead of text.
func (t MessageType) NeedsMedia() bool {
	return t != TypeText
}

type Request struct {
	Channel  model.Channel
	To       string
	Text     string
	Type     MessageType
	MediaURL string
}

// Validate checks the request shape before it reaches a channel service.
func (r Request) Validate() error {
	if !r.Channel.Valid() {
		return &model.ValidationError{Field: "channel", Reason: fmt.Sprintf("unknown channel %q", r.Channel), Err: model.ErrUnknownChannel}
	}
	if strings.TrimSpace(r.To) == "" {
		return &model.ValidationError{Field: "to", Reason: "destination is required", Err: model.ErrMissingField}
	}
	if !r.Type.Valid() {
		return &model.ValidationError{Field: "message_type", Reason: fmt.Sprintf("unsupported message type %q", r.Type)}
	}
	if r.Type.NeedsMedia() && r.MediaURL == "" {
		return &model.ValidationError{Field: "media_url", Reason: fmt.Sprintf("%s messages need a media url", r.Type), Err: model.ErrMissingField}
	}
	if r.Type == TypeText && strings.TrimSpace(r.Text) == "" {
		return &model.ValidationError{Field: "message", Reason: "text messages need a body", Err: model.ErrMissingField}
	}
	return nil
}

// Result is the outcome reported by a channel service. A service that
// answers but refuses the message yields Success false with Error set.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, req Request) (Result, error)
}

// Dispatcher routes requests to the Sender registered for their channel.
type Dispatcher struct {
	mu      sync.RWMutex
	senders map[model.Channel]Sender
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{senders: make(map[model.Channel]Sender)}
}

func (d *Dispatcher) Register(ch model.Channel, s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[ch] = s
}

// Configured reports whether ch has a sender.
func (d *Dispatcher) Configured(ch model.Channel) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.senders[ch]
	return ok
}

func (d *Dispatcher) Send(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	d.mu.RLock()
	s, ok := d.senders[req.Channel]
	d.mu.RUnlock()
	if !ok {
		log.Warn().Str("channel", req.Channel.String()).Msg("No delivery service configured for channel")
		return Result{Success: false, Error: fmt.Sprintf("channel %s is not configured for delivery", req.Channel)}, nil
	}

	res, err := s.Send(ctx, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("channel", req.Channel.String()).
			Str("to", req.To).
			Msg("Delivery failed")
		return Result{Success: false, Error: err.Error()}, nil
	}
	return res, nil
}

// NormalizeWhatsAppNumber drops the leading plus sign and, for Argentine
// mobile numbers, the 9 that follows the country code.
func NormalizeWhatsAppNumber(to string) string {
	number, ok := strings.CutPrefix(to, "+")
	if !ok {
		return to
	}
	if rest, ok := strings.CutPrefix(number, "549"); ok {
		return "54" + rest
	}
	return number
}
