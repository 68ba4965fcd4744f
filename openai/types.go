package openai

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

// TagResult is the structured answer expected from the model.
type TagResult struct {
	Tag string `json:"tag" jsonschema_description:"The single tag that best describes the customer message"`
}

// GenerateSchema creates a strict JSON schema for T without references,
// which is the shape structured outputs accept.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// tagSchema restricts TagResult.Tag to the configured tags.
func tagSchema(tags []string) *jsonschema.Schema {
	schema := GenerateSchema[TagResult]()
	if prop, ok := schema.Properties.Get("tag"); ok {
		enum := make([]any, len(tags))
		for i, t := range tags {
			enum[i] = t
		}
		prop.Enum = enum
	}
	return schema
}

func createSchemaParam(tags []string) openai.ResponseFormatJSONSchemaJSONSchemaParam {
	return openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "message_tag",
		Description: openai.String("The tag assigned to a customer message"),
		Schema:      tagSchema(tags),
		Strict:      openai.Bool(true),
	}
}
