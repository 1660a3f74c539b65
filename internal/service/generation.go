// generation.go — сервис генерации сводок через внешний генератор.
// Применяет таймаут, кэширует результаты, обрезает ответ до 500 символов.
// Любой сбой генератора сообщается как ErrGenerationFailed, без повторов.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dackow/meeting-summary/internal/domain/model"
)

// Prometheus-метрики генерации.
var (
	generationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ms_generation_total",
		Help: "Количество запросов генерации по статусу (ok, cached, error).",
	}, []string{"status"})
	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ms_generation_duration_seconds",
		Help:    "Длительность вызова генератора сводок.",
		Buckets: prometheus.DefBuckets,
	})
)

// SummaryGenerator — внешний генератор сводок (mock, OpenAI, Gemini).
type SummaryGenerator interface {
	Generate(ctx context.Context, transcription string) (string, error)
}

// GenerationService — координирует генератор, таймаут и кэш.
type GenerationService struct {
	gen     SummaryGenerator
	timeout time.Duration
	cache   *GenerationCache
	logger  *slog.Logger
}

// NewGenerationService создаёт сервис генерации.
// cache может быть nil — тогда результаты не кэшируются.
func NewGenerationService(gen SummaryGenerator, timeout time.Duration, cache *GenerationCache, logger *slog.Logger) *GenerationService {
	return &GenerationService{
		gen:     gen,
		timeout: timeout,
		cache:   cache,
		logger:  logger.With(slog.String("component", "generation_service")),
	}
}

// Generate возвращает сводку не длиннее 500 символов.
// Результат не сохраняется в хранилище.
func (s *GenerationService) Generate(ctx context.Context, transcription string) (string, error) {
	if transcription == "" {
		return "", fmt.Errorf("%w: пустая транскрипция", ErrValidation)
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(transcription); ok {
			generationTotal.WithLabelValues("cached").Inc()
			return cached, nil
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.gen.Generate(ctx, transcription)
	generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		generationTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	summary := truncateRunes(strings.TrimSpace(raw), model.MaxSummaryLength)
	if summary == "" {
		generationTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: генератор вернул пустой результат", ErrGenerationFailed)
	}

	if s.cache != nil {
		s.cache.Set(transcription, summary)
	}
	generationTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("Сводка сгенерирована",
		slog.Int("transcription_chars", utf8.RuneCountInString(transcription)),
		slog.Int("summary_chars", utf8.RuneCountInString(summary)),
		slog.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

// truncateRunes обрезает строку до limit символов.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
