package openai

import (
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client wraps the OpenAI client used to classify inbound messages.
type Client struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewClient creates a client for apiKey. Extra request options such as a
// base URL or retry policy are passed through to the SDK.
func NewClient(apiKey string, httpClient *http.Client, opts ...option.RequestOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}, opts...)

	client := openai.NewClient(opts...)
	return &Client{
		client: &client,
		model:  openai.ChatModelGPT4_1Mini,
	}
}
