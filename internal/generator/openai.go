package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// openAIClientInterface — часть клиента go-openai, нужная генератору.
type openAIClientInterface interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI — генератор через OpenAI-совместимый chat completion API.
type OpenAI struct {
	client openAIClientInterface
	model  string
}

// NewOpenAI создаёт генератор. baseURL пустой — официальный API OpenAI.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate реализует Generator.
func (g *OpenAI) Generate(ctx context.Context, transcription string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcription},
		},
		Temperature: 0.3,
		MaxTokens:   400,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("вызов OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI API вернул пустой ответ")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
