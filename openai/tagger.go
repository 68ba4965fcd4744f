package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

var ErrNoTags = errors.New("no tags configured")

// Tagger assigns one of a fixed set of tags to inbound message text.
type Tagger struct {
	client *Client
	tags   []string
}

// NewTagger keeps the first spelling of each tag; tags differing only in
// case are the same tag.
func NewTagger(client *Client, tags []string) (*Tagger, error) {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && indexFold(cleaned, t) < 0 {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoTags
	}
	return &Tagger{client: client, tags: cleaned}, nil
}

func (t *Tagger) Tags() []string {
	return slices.Clone(t.tags)
}

// Tag asks the model for the tag of text.
func (t *Tagger) Tag(ctx context.Context, text string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(buildTaggerPrompt(t.tags)),
		openai.UserMessage(text),
	}

	chatCompletion, err := t.client.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    t.client.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: createSchemaParam(t.tags)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("tagging request failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return "", errors.New("tagging response has no choices")
	}

	tag, err := t.parseTag(chatCompletion.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}

	log.Debug().Str("tag", tag).Msg("Message tagged")
	return tag, nil
}

func (t *Tagger) parseTag(content string) (string, error) {
	var result TagResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal tag response: %w", err)
	}
	i := indexFold(t.tags, strings.TrimSpace(result.Tag))
	if i < 0 {
		return "", fmt.Errorf("model returned unknown tag %q", result.Tag)
	}
	return t.tags[i], nil
}

func indexFold(tags []string, tag string) int {
	fold := cases.Fold()
	want := fold.String(tag)
	return slices.IndexFunc(tags, func(t string) bool {
		return fold.String(t) == want
	})
}
