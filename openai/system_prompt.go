package openai

import (
	"fmt"
	"strings"
)

const taggerPrompt = `You classify messages that customers send to an online store's support inbox.

Pick exactly one tag from the allowed list that best describes what the customer is asking about. When nothing fits, pick the most general tag available.

Allowed tags: %s

Answer only with the JSON object requested.`

func buildTaggerPrompt(tags []string) string {
	return fmt.Sprintf(taggerPrompt, strings.Join(tags, ", "))
}
