package generativeAI

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const StrategyGemini = "gemini"

var _ Strategy = (*Gemini)(nil)

// Gemini generates itineraries with the Gemini API.
type Gemini struct {
	apiKey string
	model  string
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	g := &Gemini{apiKey: apiKey, model: model}
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Name() string { return StrategyGemini }

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini API key is missing")
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}
