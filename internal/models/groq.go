package models

import (
	"context"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqModel creates a model.LLM for Groq's OpenAI-compatible endpoint
// (e.g., "llama-3.3-70b-versatile").
func NewGroqModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return newCompatibleModel(modelName, cfg, "groq-go", groqBaseURL)
}
