package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextMind-AI/inbox-analytics/model"
)

func TestNormalizeWhatsAppNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+5491122334455", "541122334455"},
		{"+5511999998888", "5511999998888"},
		{"5491122334455", "5491122334455"},
		{"+1555", "1555"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhatsAppNumber(tt.in))
		})
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"text", Request{Channel: model.ChannelGmail, To: "a@b.c", Text: "hola", Type: TypeText}, false},
		{"image", Request{Channel: model.ChannelWhatsApp, To: "+1", Type: TypeImage, MediaURL: "https://x/y.png"}, false},
		{"unknown channel", Request{Channel: "sms", To: "+1", Text: "x", Type: TypeText}, true},
		{"no destination", Request{Channel: model.ChannelGmail, Text: "x", Type: TypeText}, true},
		{"image without media", Request{Channel: model.ChannelWhatsApp, To: "+1", Type: TypeImage}, true},
		{"empty text", Request{Channel: model.ChannelWhatsApp, To: "+1", Type: TypeText}, true},
		{"bad type", Request{Channel: model.ChannelWhatsApp, To: "+1", Text: "x", Type: "sticker"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.True(t, model.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHTTPForwarder(t *testing.T) {
	var gotPath string
	var gotBody forwardPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message_id":"wamid.1"}`))
	}))
	defer srv.Close()

	f := NewHTTPForwarder(srv.URL+"/", srv.Client())
	res, err := f.Send(context.Background(), Request{
		Channel: model.ChannelWhatsApp,
		To:      "+5491122334455",
		Text:    "hola",
		Type:    TypeText,
	})
	require.NoError(t, err)

	assert.Equal(t, Result{Success: true, MessageID: "wamid.1"}, res)
	assert.Equal(t, "/send/whatsapp", gotPath)
	assert.Equal(t, forwardPayload{To: "541122334455", Message: "hola", MessageType: TypeText}, gotBody)
}

func TestHTTPForwarderServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	res, err := NewHTTPForwarder(srv.URL, srv.Client()).Send(context.Background(), Request{
		Channel: model.ChannelGmail,
		To:      "a@b.c",
		Text:    "hola",
		Type:    TypeText,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown error", res.Error)
}

func TestHTTPForwarderNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res, err := NewHTTPForwarder(srv.URL, srv.Client()).Send(context.Background(), Request{
		Channel: model.ChannelInstagram,
		To:      "ig_user",
		Text:    "hola",
		Type:    TypeText,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "500")
}

type senderFunc func(context.Context, Request) (Result, error)

func (f senderFunc) Send(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	d.Register(model.ChannelGmail, senderFunc(func(_ context.Context, req Request) (Result, error) {
		return Result{Success: true, MessageID: "gm-" + req.To}, nil
	}))
	d.Register(model.ChannelInstagram, senderFunc(func(context.Context, Request) (Result, error) {
		return Result{}, errors.New("connection refused")
	}))
	ctx := context.Background()

	res, err := d.Send(ctx, Request{Channel: model.ChannelGmail, To: "x", Text: "hola", Type: TypeText})
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, MessageID: "gm-x"}, res)

	res, err = d.Send(ctx, Request{Channel: model.ChannelInstagram, To: "x", Text: "hola", Type: TypeText})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "connection refused", res.Error)

	res, err = d.Send(ctx, Request{Channel: model.ChannelWhatsApp, To: "x", Text: "hola", Type: TypeText})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, d.Configured(model.ChannelWhatsApp))

	_, err = d.Send(ctx, Request{Channel: model.ChannelWhatsApp, To: "", Text: "hola", Type: TypeText})
	assert.True(t, model.IsValidation(err))
}
