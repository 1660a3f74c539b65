package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiModels — часть genai.Models, нужная генератору.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini — генератор через Google Gemini API.
type Gemini struct {
	models geminiModels
	model  string
}

// NewGemini создаёт клиента Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("создание клиента Gemini: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Generate реализует Generator.
func (g *Gemini) Generate(ctx context.Context, transcription string) (string, error) {
	result, err := g.models.GenerateContent(ctx, g.model,
		genai.Text(transcription),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		},
	)
	if err != nil {
		return "", fmt.Errorf("вызов Gemini API: %w", err)
	}
	if result == nil {
		return "", errors.New("Gemini API вернул пустой ответ")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("Gemini API вернул пустой ответ")
	}
	return text, nil
}
