package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/NextMind-AI/inbox-analytics/model"
)

type forwardPayload struct {
	To          string      `json:"to"`
	Message     string      `json:"message"`
	MessageType MessageType `json:"message_type"`
	MediaURL    string      `json:"media_url,omitempty"`
}

// HTTPForwarder posts requests to a channel service at
// <baseURL>/send/<channel>.
type HTTPForwarder struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPForwarder(baseURL string, httpClient *http.Client) *HTTPForwarder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPForwarder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (f *HTTPForwarder) Send(ctx context.Context, req Request) (Result, error) {
	to := req.To
	if req.Channel == model.ChannelWhatsApp {
		to = NormalizeWhatsAppNumber(to)
	}

	payload, err := json.Marshal(forwardPayload{
		To:          to,
		Message:     req.Text,
		MessageType: req.Type,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/send/%s", f.baseURL, req.Channel)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Result{Success: false, Error: fmt.Sprintf("unexpected status code: %d", resp.StatusCode)}, nil
		}
		return Result{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !res.Success {
		res.Success = false
		if res.Error == "" {
			res.Error = "Unknown error"
		}
	}
	return res, nil
}
