package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dackow/meeting-summary/internal/domain/model"
)

// Колонки сортировки в терминах хранилища.
const (
	ColumnCreatedAt  = "created_at"
	ColumnModifiedAt = "modified_at"
)

// SummaryRepository — интерфейс CRUD для таблицы meeting_summaries.
// Все операции ограничены владельцем записи.
type SummaryRepository interface {
	// List возвращает записи владельца с фильтром по created_at.
	List(ctx context.Context, ownerID string, filter ListFilter) ([]model.SummaryListItem, error)
	// GetByID возвращает запись по UUID.
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*model.Summary, error)
	// Create вставляет новую запись и возвращает её целиком.
	Create(ctx context.Context, s model.NewSummary) (*model.Summary, error)
	// Update заменяет переданные поля, обновляет modified_at.
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch model.SummaryPatch) (*model.Summary, error)
	// Delete удаляет запись безвозвратно.
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// ListFilter — фильтр и сортировка списка в терминах хранилища.
type ListFilter struct {
	// SortColumn — created_at или modified_at.
	SortColumn string
	// Descending — сортировка по убыванию.
	Descending bool
	// From, To — включительные границы created_at.
	From *time.Time
	To   *time.Time
}

// summaryColumns — полный набор колонок записи в порядке scanSummary.
const summaryColumns = `id, user_id, title, file_name, transcription, summary,
	llm_generated, notes, created_at, modified_at`

// summaryRepo — реализация SummaryRepository.
type summaryRepo struct {
	db DBTX
}

// NewSummaryRepository создаёт репозиторий сводок.
func NewSummaryRepository(db DBTX) SummaryRepository {
	return &summaryRepo{db: db}
}

func scanSummary(row pgx.Row) (*model.Summary, error) {
	s := &model.Summary{}
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Title, &s.FileName, &s.Transcription, &s.Summary,
		&s.LLMGenerated, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// classify переводит ошибку pgx в ошибку слоя репозиториев.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case isPermissionDenied(err):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, op, err)
	default:
		return fmt.Errorf("ошибка %s: %w", op, err)
	}
}

func (r *summaryRepo) List(ctx context.Context, ownerID string, filter ListFilter) ([]model.SummaryListItem, error) {
	where, args := buildListWhere(ownerID, filter)

	query := fmt.Sprintf(`
		SELECT id, title, file_name, created_at, modified_at
		FROM meeting_summaries
		%s
		%s`, where, buildOrderBy(filter.SortColumn, filter.Descending))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "получения списка сводок")
	}
	defer rows.Close()

	result := make([]model.SummaryListItem, 0)
	for rows.Next() {
		var it model.SummaryListItem
		if err := rows.Scan(&it.ID, &it.Title, &it.FileName, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сводки: %w", err)
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "чтения списка сводок")
	}
	return result, nil
}

func (r *summaryRepo) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*model.Summary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM meeting_summaries
		WHERE id = $1 AND user_id = $2`

	s, err := scanSummary(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return nil, classify(err, "получения сводки")
	}
	return s, nil
}

func (r *summaryRepo) Create(ctx context.Context, n model.NewSummary) (*model.Summary, error) {
	query := `
		INSERT INTO meeting_summaries (user_id, title, file_name, transcription,
			summary, llm_generated, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + summaryColumns

	s, err := scanSummary(r.db.QueryRow(ctx, query,
		n.OwnerID, n.Title, n.FileName, n.Transcription,
		n.Summary, n.LLMGenerated, n.Notes,
	))
	if err != nil {
		return nil, classify(err, "создания сводки")
	}
	return s, nil
}

func (r *summaryRepo) Update(ctx context.Context, ownerID string, id uuid.UUID, patch model.SummaryPatch) (*model.Summary, error) {
	set, args := buildUpdateSet(patch, 3)

	query := fmt.Sprintf(`
		UPDATE meeting_summaries
		SET %s
		WHERE id = $1 AND user_id = $2
		RETURNING %s`, set, summaryColumns)

	args = append([]any{id, ownerID}, args...)

	s, err := scanSummary(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, classify(err, "обновления сводки")
	}
	return s, nil
}

func (r *summaryRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	query := `
		DELETE FROM meeting_summaries
		WHERE id = $1 AND user_id = $2
		RETURNING id`

	var deleted uuid.UUID
	if err := r.db.QueryRow(ctx, query, id, ownerID).Scan(&deleted); err != nil {
		return classify(err, "удаления сводки")
	}
	return nil
}

// buildListWhere строит WHERE-условие списка: владелец плюс границы created_at.
func buildListWhere(ownerID string, filter ListFilter) (whereClause string, args []any) {
	conditions := []string{"user_id = $1"}
	args = []any{ownerID}

	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderBy строит ORDER BY с безопасным whitelist полей.
// id добавляется для стабильного порядка при равных временах.
func buildOrderBy(column string, descending bool) string {
	if column != ColumnModifiedAt {
		column = ColumnCreatedAt
	}

	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	return fmt.Sprintf("ORDER BY %s %s, id %s", column, direction, direction)
}

// buildUpdateSet строит SET-часть UPDATE только из переданных полей.
// modified_at обновляется всегда.
func buildUpdateSet(patch model.SummaryPatch, startArg int) (setClause string, args []any) {
	var sets []string
	argNum := startArg

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if patch.FileName.Set {
		add("file_name", patch.FileName.Value)
	}
	if patch.Transcription != nil {
		add("transcription", *patch.Transcription)
	}
	if patch.Summary != nil {
		add("summary", *patch.Summary)
	}
	if patch.LLMGenerated != nil {
		add("llm_generated", *patch.LLMGenerated)
	}
	if patch.Notes.Set {
		add("notes", patch.Notes.Value)
	}

	sets = append(sets, "modified_at = now()")
	return strings.Join(sets, ", "), args
}
