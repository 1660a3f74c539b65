package generator

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// mockMaxLength — ограничение длины ответа mock-генератора.
const mockMaxLength = 500

// Mock — детерминированный генератор: первая непустая строка транскрипции,
// обрезанная до 500 символов, после имитации задержки.
type Mock struct {
	delay time.Duration
}

// NewMock создаёт mock-генератор с задержкой delay (0 — без задержки).
func NewMock(delay time.Duration) *Mock {
	return &Mock{delay: delay}
}

// Generate реализует Generator. Отмена контекста прерывает ожидание.
func (m *Mock) Generate(ctx context.Context, transcription string) (string, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	line := firstNonEmptyLine(transcription)
	if utf8.RuneCountInString(line) > mockMaxLength {
		line = string([]rune(line)[:mockMaxLength])
	}
	return line, nil
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
