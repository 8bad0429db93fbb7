package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
)

const StrategyLocalModel = "local_model"

var _ Strategy = (*LocalModel)(nil)

// LocalModel talks to an OpenAI-compatible server on the local machine,
// such as Ollama. It only generates after a successful Load.
type LocalModel struct {
	client *openai.Client
	model  string
	loaded atomic.Bool
}

func NewLocalModel(baseURL, model string) *LocalModel {
	cfg := openai.DefaultConfig("")
	cfg.BaseURL = baseURL
	return &LocalModel{client: openai.NewClientWithConfig(cfg), model: model}
}

func (m *LocalModel) Name() string { return StrategyLocalModel }

// Load checks that the server is reachable and serves the model.
func (m *LocalModel) Load(ctx context.Context, logger *slog.Logger) bool {
	models, err := m.client.ListModels(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load local model", slog.String("model", m.model), slog.Any("error", err))
		return false
	}
	for _, candidate := range models.Models {
		// Ollama lists untagged models as "<name>:latest".
		if candidate.ID == m.model || candidate.ID == m.model+":latest" {
			m.loaded.Store(true)
			logger.InfoContext(ctx, "Local model loaded", slog.String("model", m.model))
			return true
		}
	}
	logger.WarnContext(ctx, "Local model not served", slog.String("model", m.model), slog.Int("available", len(models.Models)))
	return false
}

func (m *LocalModel) Loaded() bool { return m.loaded.Load() }

func (m *LocalModel) Generate(ctx context.Context, req Request) (string, error) {
	if !m.Loaded() {
		return "", ErrUnavailable
	}
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("local model completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("local model returned no text")
	}
	return resp.Choices[0].Message.Content, nil
}
