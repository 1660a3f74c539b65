// Пакет validation — чистые функции проверки и нормализации входных данных
// API сводок. Каждая функция собирает ошибки по всем полям сразу.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dackow/meeting-summary/internal/domain/model"
)

// BodyField — ключ FieldErrors для ошибок, относящихся к телу целиком.
const BodyField = "_body"

// FieldErrors — ошибки валидации, сгруппированные по имени поля.
type FieldErrors map[string][]string

// Add добавляет сообщение об ошибке для поля.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Error реализует интерфейс error: поля в алфавитном порядке.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(fe[f], "; ")))
	}
	return "ошибка валидации: " + strings.Join(parts, ", ")
}

// orNil возвращает nil-интерфейс, если ошибок нет.
func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Сообщения об ошибках полей.
const (
	msgRequired        = "поле обязательно"
	msgMustBeString    = "ожидается строка"
	msgMustBeBool      = "ожидается логическое значение"
	msgMustBeNullable  = "ожидается строка или null"
	msgEmpty           = "значение не может быть пустым"
	msgSummaryTooLong  = "сводка не может превышать 500 символов"
	msgNoUpdatedFields = "не передано ни одного изменяемого поля"
)

// --- Тело создания ---

// ValidateCreate проверяет тело POST /summaries.
// Неизвестные ключи игнорируются.
func ValidateCreate(body map[string]json.RawMessage) (model.CreateSummaryInput, error) {
	errs := FieldErrors{}
	var in model.CreateSummaryInput

	if raw, ok := body["transcription"]; !ok {
		errs.Add("transcription", msgRequired)
	} else if s, ok := checkNonEmptyString(errs, "transcription", raw); ok {
		in.Transcription = s
	}

	if raw, ok := body["summary"]; !ok {
		errs.Add("summary", msgRequired)
	} else if s, ok := checkSummary(errs, raw); ok {
		in.Summary = s
	}

	if raw, ok := body["llm_generated"]; !ok {
		errs.Add("llm_generated", msgRequired)
	} else if b, ok := checkBool(errs, "llm_generated", raw); ok {
		in.LLMGenerated = b
	}

	if raw, ok := body["file_name"]; ok {
		if v, ok := checkNullableString(errs, "file_name", raw); ok {
			in.FileName = v
		}
	}

	if raw, ok := body["notes"]; ok {
		if v, ok := checkNullableString(errs, "notes", raw); ok {
			in.Notes = normalizeNotes(v)
		}
	}

	if err := errs.orNil(); err != nil {
		return model.CreateSummaryInput{}, err
	}
	return in, nil
}

// --- Тело обновления ---

// ValidateUpdate проверяет тело PUT /summaries/{id}: все поля необязательны,
// но должно быть передано хотя бы одно изменяемое поле.
func ValidateUpdate(body map[string]json.RawMessage) (model.SummaryPatch, error) {
	errs := FieldErrors{}
	var p model.SummaryPatch

	if raw, ok := body["transcription"]; ok {
		if s, ok := checkNonEmptyString(errs, "transcription", raw); ok {
			p.Transcription = &s
		}
	}

	if raw, ok := body["summary"]; ok {
		if s, ok := checkSummary(errs, raw); ok {
			p.Summary = &s
		}
	}

	if raw, ok := body["llm_generated"]; ok {
		if b, ok := checkBool(errs, "llm_generated", raw); ok {
			p.LLMGenerated = &b
		}
	}

	if raw, ok := body["file_name"]; ok {
		if v, ok := checkNullableString(errs, "file_name", raw); ok {
			p.FileName = model.OptionalString{Set: true, Value: v}
		}
	}

	if raw, ok := body["notes"]; ok {
		if v, ok := checkNullableString(errs, "notes", raw); ok {
			p.Notes = model.OptionalString{Set: true, Value: normalizeNotes(v)}
		}
	}

	if len(errs) == 0 && p.IsEmpty() {
		errs.Add(BodyField, msgNoUpdatedFields)
	}

	if err := errs.orNil(); err != nil {
		return model.SummaryPatch{}, err
	}
	return p, nil
}

// --- Тело генерации ---

// ValidateGenerate проверяет тело POST /generate-summary.
func ValidateGenerate(body map[string]json.RawMessage) (string, error) {
	errs := FieldErrors{}
	var transcription string

	if raw, ok := body["transcription"]; !ok {
		errs.Add("transcription", msgRequired)
	} else if s, ok := checkNonEmptyString(errs, "transcription", raw); ok {
		transcription = s
	}

	if err := errs.orNil(); err != nil {
		return "", err
	}
	return transcription, nil
}

// --- Проверки отдельных значений ---

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeString декодирует JSON-строку; null строкой не считается.
func decodeString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func checkNonEmptyString(errs FieldErrors, field string, raw json.RawMessage) (string, bool) {
	s, ok := decodeString(raw)
	if !ok {
		errs.Add(field, msgMustBeString)
		return "", false
	}
	if s == "" {
		errs.Add(field, msgEmpty)
		return "", false
	}
	return s, true
}

func checkSummary(errs FieldErrors, raw json.RawMessage) (string, bool) {
	s, ok := checkNonEmptyString(errs, "summary", raw)
	if !ok {
		return "", false
	}
	if utf8.RuneCountInString(s) > model.MaxSummaryLength {
		errs.Add("summary", msgSummaryTooLong)
		return "", false
	}
	return s, true
}

func checkBool(errs FieldErrors, field string, raw json.RawMessage) (bool, bool) {
	if isNull(raw) {
		errs.Add(field, msgMustBeBool)
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		errs.Add(field, msgMustBeBool)
		return false, false
	}
	return b, true
}

func checkNullableString(errs FieldErrors, field string, raw json.RawMessage) (*string, bool) {
	if isNull(raw) {
		return nil, true
	}
	s, ok := decodeString(raw)
	if !ok {
		errs.Add(field, msgMustBeNullable)
		return nil, false
	}
	return &s, true
}

// normalizeNotes превращает пустую строку в nil.
func normalizeNotes(v *string) *string {
	if v != nil && *v == "" {
		return nil
	}
	return v
}
