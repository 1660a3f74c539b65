// Пакет model — доменные типы сводок встреч, общие для слоёв
// валидации, сервиса и хранилища.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxSummaryLength — максимальная длина сводки в символах (рунах).
const MaxSummaryLength = 500

// Summary — запись сводки встречи в хранилище (таблица meeting_summaries).
// OwnerID наружу через API не отдаётся.
type Summary struct {
	ID            uuid.UUID
	OwnerID       string
	Title         string
	FileName      *string
	Transcription string
	Summary       string
	LLMGenerated  bool
	Notes         *string
	CreatedAt     time.Time
	// UpdatedAt хранится в колонке modified_at.
	UpdatedAt time.Time
}

// SummaryListItem — сокращённое представление записи для списка.
type SummaryListItem struct {
	ID        uuid.UUID
	Title     string
	FileName  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateSummaryInput — провалидированные данные для создания записи.
// Notes уже нормализован: пустая строка превращена в nil.
type CreateSummaryInput struct {
	FileName      *string
	Transcription string
	Summary       string
	LLMGenerated  bool
	Notes         *string
}

// NewSummary — строка для вставки: входные данные плюс владелец и заголовок.
type NewSummary struct {
	OwnerID string
	Title   string
	CreateSummaryInput
}

// OptionalString — поле частичного обновления, допускающее null.
// Set=false — поле не передано; Set=true, Value=nil — явный null.
type OptionalString struct {
	Set   bool
	Value *string
}

// SummaryPatch — набор заменяемых полей при обновлении.
// Nil-указатель означает, что поле не меняется.
type SummaryPatch struct {
	FileName      OptionalString
	Transcription *string
	Summary       *string
	LLMGenerated  *bool
	Notes         OptionalString
}

// IsEmpty сообщает, что патч не содержит ни одного поля.
func (p SummaryPatch) IsEmpty() bool {
	return !p.FileName.Set &&
		p.Transcription == nil &&
		p.Summary == nil &&
		p.LLMGenerated == nil &&
		!p.Notes.Set
}

// SortField — поле сортировки списка в терминах API.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortOrder — направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams — провалидированные параметры запроса списка.
// Nil-границы означают отсутствие фильтра.
type ListParams struct {
	SortBy    SortField
	SortOrder SortOrder
	From      *time.Time
	To        *time.Time
}
