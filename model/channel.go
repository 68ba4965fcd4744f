package model

import (
	"fmt"
	"strings"
)

// Channel identifies the messaging network a message travelled through.
// The set is closed; use ParseChannel to build one from untrusted input.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
	ChannelGmail     Channel = "gmail"
)

var channels = []Channel{ChannelWhatsApp, ChannelInstagram, ChannelGmail}

var displayNames = map[Channel]string{
	ChannelWhatsApp:  "WhatsApp",
	ChannelInstagram: "Instagram",
	ChannelGmail:     "Gmail",
}

// Channels returns every channel in report order.
func Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// ParseChannel validates raw against the closed set of channels.
func ParseChannel(raw string) (Channel, error) {
	c := Channel(strings.TrimSpace(raw))
	if c.Valid() {
		return c, nil
	}
	return "", &ValidationError{
		Field:  "channel",
		Reason: fmt.Sprintf("unknown channel %q", raw),
		Err:    ErrUnknownChannel,
	}
}

func (c Channel) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

func (c Channel) String() string {
	return string(c)
}

func (c Channel) DisplayName() string {
	return displayNames[c]
}

func (c *Channel) UnmarshalText(text []byte) error {
	parsed, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
