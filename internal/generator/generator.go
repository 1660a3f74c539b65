// Пакет generator — внешние генераторы сводок по транскрипции встречи.
// Реализации: детерминированный mock (по умолчанию), OpenAI-совместимый
// chat completion API и Google Gemini.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dackow/meeting-summary/internal/config"
)

// Generator возвращает сводку по транскрипции.
// Длина ответа не гарантируется, ограничение применяет вызывающий.
type Generator interface {
	Generate(ctx context.Context, transcription string) (string, error)
}

// systemPrompt — инструкция для LLM-провайдеров.
const systemPrompt = `Ты помощник, который составляет краткие сводки встреч.
По транскрипции встречи напиши сводку: ключевые темы, принятые решения и договорённости.
Пиши на языке транскрипции, простым текстом без Markdown.
Сводка должна быть не длиннее 500 символов.`

// New создаёт генератор, выбранный в MS_GENERATOR_PROVIDER.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Generator, error) {
	switch cfg.GeneratorProvider {
	case config.GeneratorMock:
		logger.Info("Генератор сводок: mock", slog.Duration("delay", cfg.GeneratorMockDelay))
		return NewMock(cfg.GeneratorMockDelay), nil
	case config.GeneratorOpenAI:
		logger.Info("Генератор сводок: OpenAI", slog.String("model", cfg.OpenAIModel))
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case config.GeneratorGemini:
		logger.Info("Генератор сводок: Gemini", slog.String("model", cfg.GeminiModel))
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("неизвестный провайдер генерации: %q", cfg.GeneratorProvider)
	}
}
