package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/dackow/meeting-summary/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock ---

func TestMock_FirstNonEmptyLine(t *testing.T) {
	m := NewMock(0)

	got, err := m.Generate(context.Background(), "\n   \n  Обсудили релиз  \nВторая строка")
	require.NoError(t, err)
	assert.Equal(t, "Обсудили релиз", got)
}

func TestMock_Truncates(t *testing.T) {
	m := NewMock(0)

	got, err := m.Generate(context.Background(), strings.Repeat("я", 700))
	require.NoError(t, err)
	assert.Equal(t, 500, utf8.RuneCountInString(got))
}

func TestMock_BlankInput(t *testing.T) {
	m := NewMock(0)

	got, err := m.Generate(context.Background(), " \n\t ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMock_ContextCancelled(t *testing.T) {
	m := NewMock(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, "текст")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMock_Delay(t *testing.T) {
	m := NewMock(20 * time.Millisecond)

	start := time.Now()
	_, err := m.Generate(context.Background(), "текст")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

// --- OpenAI ---

type mockOpenAIClient struct {
	mock.Mock
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func TestOpenAI_Generate(t *testing.T) {
	client := new(mockOpenAIClient)
	g := &OpenAI{client: client, model: "gpt-4o-mini"}

	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-4o-mini" &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[1].Content == "транскрипция"
	})).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  Сводка встречи  "}},
		},
	}, nil)

	got, err := g.Generate(context.Background(), "транскрипция")
	require.NoError(t, err)
	assert.Equal(t, "Сводка встречи", got)
	client.AssertExpectations(t)
}

func TestOpenAI_APIError(t *testing.T) {
	client := new(mockOpenAIClient)
	g := &OpenAI{client: client, model: "gpt-4o-mini"}
	apiErr := errors.New("rate limit")

	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, apiErr)

	_, err := g.Generate(context.Background(), "транскрипция")
	assert.ErrorIs(t, err, apiErr)
}

func TestOpenAI_NoChoices(t *testing.T) {
	client := new(mockOpenAIClient)
	g := &OpenAI{client: client, model: "gpt-4o-mini"}

	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	_, err := g.Generate(context.Background(), "транскрипция")
	assert.Error(t, err)
}

// --- Gemini ---

type mockGeminiModels struct {
	mock.Mock
}

func (m *mockGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, cfg)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func geminiResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestGemini_Generate(t *testing.T) {
	models := new(mockGeminiModels)
	g := &Gemini{models: models, model: "gemini-2.5-flash"}

	models.On("GenerateContent", mock.Anything, "gemini-2.5-flash", mock.Anything,
		mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return cfg.SystemInstruction != nil && len(cfg.SystemInstruction.Parts) == 1
		}),
	).Return(geminiResponse("\nСводка\n"), nil)

	got, err := g.Generate(context.Background(), "транскрипция")
	require.NoError(t, err)
	assert.Equal(t, "Сводка", got)
	models.AssertExpectations(t)
}

func TestGemini_Errors(t *testing.T) {
	apiErr := errors.New("quota exceeded")

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
	}{
		{"ошибка API", nil, apiErr},
		{"nil ответ", nil, nil},
		{"пустой текст", geminiResponse("   "), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := new(mockGeminiModels)
			g := &Gemini{models: models, model: "gemini-2.5-flash"}
			models.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(tt.resp, tt.err)

			_, err := g.Generate(context.Background(), "транскрипция")
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

// --- Фабрика ---

func TestNew_Providers(t *testing.T) {
	ctx := context.Background()

	g, err := New(ctx, &config.Config{GeneratorProvider: config.GeneratorMock}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, g)

	g, err = New(ctx, &config.Config{
		GeneratorProvider: config.GeneratorOpenAI,
		OpenAIAPIKey:      "sk-test",
		OpenAIBaseURL:     "http://localhost:11434/v1",
		OpenAIModel:       "llama3",
	}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	g, err = New(ctx, &config.Config{
		GeneratorProvider: config.GeneratorGemini,
		GeminiAPIKey:      "test-key",
		GeminiModel:       "gemini-2.5-flash",
	}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, g)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &config.Config{GeneratorProvider: "claude"}, discardLogger())
	assert.Error(t, err)
}
