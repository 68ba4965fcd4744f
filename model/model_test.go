package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    Channel
		wantErr bool
	}{
		{name: "whatsapp", input: "whatsapp", want: ChannelWhatsApp},
		{name: "instagram", input: "instagram", want: ChannelInstagram},
		{name: "gmail with spaces", input: " gmail ", want: ChannelGmail},
		{name: "unknown", input: "telegram", wantErr: true},
		{name: "case sensitive", input: "WhatsApp", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseChannel(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.True(t, errors.Is(err, ErrUnknownChannel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChannelUnmarshalRejectsUnknown(t *testing.T) {
	var payload struct {
		Channel Channel `json:"channel"`
	}
	err := json.Unmarshal([]byte(`{"channel":"sms"}`), &payload)
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"channel":"gmail"}`), &payload))
	assert.Equal(t, ChannelGmail, payload.Channel)
}

func TestChannelsOrder(t *testing.T) {
	assert.Equal(t, []Channel{ChannelWhatsApp, ChannelInstagram, ChannelGmail}, Channels())
	assert.Equal(t, "WhatsApp", ChannelWhatsApp.DisplayName())
}

func TestFRTMinutes(t *testing.T) {
	base := time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := base.Add(d)
		return &v
	}

	testCases := []struct {
		name     string
		received *time.Time
		response *time.Time
		want     int64
		wantOK   bool
	}{
		{name: "five minutes", received: at(0), response: at(5 * time.Minute), want: 5, wantOK: true},
		{name: "floors partial minutes", received: at(0), response: at(5*time.Minute + 59*time.Second), want: 5, wantOK: true},
		{name: "under a minute", received: at(0), response: at(30 * time.Second), want: 0, wantOK: true},
		{name: "negative floors down", received: at(0), response: at(-30 * time.Second), want: -1, wantOK: true},
		{name: "no response", received: at(0), wantOK: false},
		{name: "no receipt", response: at(time.Minute), wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Conversation{FirstReceivedAt: tc.received, FirstResponseAt: tc.response}
			got, ok := c.FRTMinutes()
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestConversationID(t *testing.T) {
	ts := time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, "conv:+54911-AAA:1761573600", ConversationID("+54911-AAA", ts))

	local := ts.In(time.FixedZone("ART", -3*3600))
	assert.Equal(t, ConversationID("x", ts), ConversationID("x", local))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"zulu", "2025-10-27T14:00:00Z", want},
		{"offset", "2025-10-27T11:00:00-03:00", want},
		{"no offset is utc", "2025-10-27T14:00:00", want},
		{"fractional", "2025-10-27T14:00:00.250Z", want.Add(250 * time.Millisecond)},
		{"fractional no offset", "2025-10-27T14:00:00.5", want.Add(500 * time.Millisecond)},
		{"space separator", "2025-10-27 14:00:00", want},
		{"minutes only", "2025-10-27T14:00", want},
		{"date only", "2025-10-27", time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampRejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrMissingField},
		{"   ", ErrMissingField},
		{"yesterday", ErrInvalidTimestamp},
		{"2025-13-01T00:00:00Z", ErrInvalidTimestamp},
		{"27/10/2025 14:00", ErrInvalidTimestamp},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseTimestamp(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}
}
