package models

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

type reportShape struct {
	Text string `json:"text"`
}

func TestBuildOpenAIParamsMessages(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText("how is the class", "user"),
			genai.NewContentFromText("fine", "model"),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("you are a reporter", "user"),
			Temperature:       genai.Ptr[float32](0.5),
			MaxOutputTokens:   150,
		},
	}

	params := buildOpenAIParams(req, "llama-3.3-70b-versatile")
	if params.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model %q", params.Model)
	}
	if len(params.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Fatal("expected system instruction first")
	}
	if params.Messages[1].OfUser == nil || params.Messages[2].OfAssistant == nil {
		t.Fatal("unexpected message roles")
	}
	if params.Temperature.Value != 0.5 {
		t.Fatalf("unexpected temperature %v", params.Temperature.Value)
	}
	if params.MaxTokens.Value != 150 {
		t.Fatalf("unexpected max tokens %v", params.MaxTokens.Value)
	}
	if req.Config.SystemInstruction.Role != "user" {
		t.Fatal("request system instruction mutated")
	}
}

func TestBuildOpenAIParamsJSONSchema(t *testing.T) {
	schema, err := jsonschema.For[reportShape](nil)
	if err != nil {
		t.Fatalf("jsonschema.For: %v", err)
	}
	schema.Title = "Class Report"

	params := buildOpenAIParams(&model.LLMRequest{
		Config: &genai.GenerateContentConfig{ResponseJsonSchema: schema},
	}, "m")
	format := params.ResponseFormat.OfJSONSchema
	if format == nil {
		t.Fatal("expected json schema response format")
	}
	if format.JSONSchema.Name != "class_report" {
		t.Fatalf("unexpected schema name %q", format.JSONSchema.Name)
	}
	body, ok := format.JSONSchema.Schema.(map[string]any)
	if !ok {
		t.Fatalf("unexpected schema type %T", format.JSONSchema.Schema)
	}
	props, ok := body["properties"].(map[string]any)
	if !ok || props["text"] == nil {
		t.Fatalf("expected text property, got %#v", body)
	}
}

func TestBuildOpenAIParamsJSONObject(t *testing.T) {
	params := buildOpenAIParams(&model.LLMRequest{
		Config: &genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	}, "m")
	if params.ResponseFormat.OfJSONObject == nil {
		t.Fatal("expected json object response format")
	}
}

func TestNewCompatibleModelValidates(t *testing.T) {
	ctx := context.Background()
	if _, err := NewGroqModel(ctx, "m", nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := NewGroqModel(ctx, "m", &genai.ClientConfig{}); err == nil {
		t.Fatal("expected error for missing key")
	}
	if _, err := NewOpenAIModel(ctx, "", &genai.ClientConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing model name")
	}
	m, err := NewGroqModel(ctx, "llama-3.3-70b-versatile", &genai.ClientConfig{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGroqModel: %v", err)
	}
	if m.Name() != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected name %q", m.Name())
	}
	if _, err := NewGeminiModel(ctx, "gemini-2.5-flash", " "); err == nil {
		t.Fatal("expected error for missing gemini key")
	}
}
