package models

import (
	"encoding/json"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// buildOpenAIParams converts an ADK request into chat completion parameters.
func buildOpenAIParams(req *model.LLMRequest, modelName string) *openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}
	if req.Model == "" {
		params.Model = modelName
	}

	var contents []*genai.Content
	if req.Config != nil && req.Config.SystemInstruction != nil {
		system := *req.Config.SystemInstruction
		system.Role = "system"
		contents = append(contents, &system)
	}
	contents = append(contents, req.Contents...)
	if messages := convertContentsToMessages(contents); len(messages) > 0 {
		params.Messages = messages
	}

	if req.Config == nil {
		return &params
	}
	if req.Config.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Config.Temperature))
	}
	if req.Config.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
	}
	if req.Config.TopP != nil {
		params.TopP = openai.Float(float64(*req.Config.TopP))
	}

	if schema, ok := req.Config.ResponseJsonSchema.(*jsonschema.Schema); ok && schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName(schema),
					Schema: convertSchemaToJSONSchema(schema),
				},
			},
		}
	} else if req.Config.ResponseMIMEType == jsonMIMEType {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	return &params
}

func schemaName(schema *jsonschema.Schema) string {
	if name := strings.TrimSpace(schema.Title); name != "" {
		return strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	return "response"
}

// convertSchemaToJSONSchema renders a schema as a plain JSON Schema object.
func convertSchemaToJSONSchema(schema *jsonschema.Schema) map[string]any {
	result := convertSchemaProperty(schema)
	if _, ok := result["type"]; !ok {
		result["type"] = "object"
	}
	if _, ok := result["required"]; !ok {
		result["required"] = []string{}
	}
	return result
}

// convertSchemaProperty converts a single schema node.
func convertSchemaProperty(schema *jsonschema.Schema) map[string]any {
	if schema == nil {
		return nil
	}

	prop := make(map[string]any)
	if len(schema.Types) > 0 {
		prop["type"] = schema.Types[0]
	} else if schema.Type != "" {
		prop["type"] = schema.Type
	}
	if schema.Description != "" {
		prop["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		prop["enum"] = schema.Enum
	}
	if len(schema.Default) > 0 {
		var defaultVal any
		if err := json.Unmarshal(schema.Default, &defaultVal); err == nil {
			prop["default"] = defaultVal
		}
	}
	if schema.Minimum != nil {
		prop["minimum"] = *schema.Minimum
	}
	if schema.Maximum != nil {
		prop["maximum"] = *schema.Maximum
	}
	if schema.MaxLength != nil {
		prop["maxLength"] = *schema.MaxLength
	}
	if schema.Items != nil {
		prop["items"] = convertSchemaProperty(schema.Items)
	}
	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, propSchema := range schema.Properties {
			if propSchema != nil {
				properties[name] = convertSchemaProperty(propSchema)
			}
		}
		prop["properties"] = properties
	}
	if len(schema.Required) > 0 {
		prop["required"] = schema.Required
	}
	return prop
}

// convertContentsToMessages converts genai contents into chat messages.
func convertContentsToMessages(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, content := range contents {
		if content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		text := sb.String()

		switch content.Role {
		case "model", "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}
