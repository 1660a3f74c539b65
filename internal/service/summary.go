// summary.go — сервис жизненного цикла сводок встреч.
// Ограничивает все операции владельцем, вычисляет заголовок,
// окно дат списка по умолчанию и переводит ошибки хранилища.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dackow/meeting-summary/internal/domain/model"
	"github.com/dackow/meeting-summary/internal/repository"
)

const (
	// titlePrefixLength — длина префикса транскрипции для заголовка.
	titlePrefixLength = 50
	// defaultListWindow — окно списка, когда границы не переданы.
	defaultListWindow = 7 * 24 * time.Hour
)

// Prometheus-метрики операций со сводками.
var summaryOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ms_summary_operations_total",
	Help: "Количество операций со сводками по типу и результату.",
}, []string{"operation", "outcome"})

// SummaryService — бизнес-логика CRUD сводок.
type SummaryService struct {
	repo   repository.SummaryRepository
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewSummaryService создаёт сервис сводок.
// loc — часовой пояс для границ суток и заголовков по умолчанию.
func NewSummaryService(repo repository.SummaryRepository, loc *time.Location, logger *slog.Logger) *SummaryService {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryService{
		repo:   repo,
		loc:    loc,
		now:    time.Now,
		logger: logger.With(slog.String("component", "summary_service")),
	}
}

// List возвращает записи владельца. Без границ используется окно
// [начало суток (now-7d), конец суток now]. Переданные границы
// расширяются до начала и конца своих суток.
func (s *SummaryService) List(ctx context.Context, ownerID string, params model.ListParams) ([]model.SummaryListItem, error) {
	if ownerID == "" {
		return nil, s.observe("list", errNoOwner())
	}

	filter := repository.ListFilter{
		SortColumn: sortColumn(params.SortBy),
		Descending: params.SortOrder != model.SortAsc,
	}

	if params.From == nil && params.To == nil {
		now := s.now()
		from := startOfDay(now.Add(-defaultListWindow), s.loc)
		to := endOfDay(now, s.loc)
		filter.From, filter.To = &from, &to
	} else {
		if params.From != nil {
			from := startOfDay(*params.From, s.loc)
			filter.From = &from
		}
		if params.To != nil {
			to := endOfDay(*params.To, s.loc)
			filter.To = &to
		}
	}

	items, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, s.observe("list", translateRepoError(err, "список сводок"))
	}
	if items == nil {
		items = []model.SummaryListItem{}
	}
	s.observe("list", nil)
	return items, nil
}

// Get возвращает запись владельца по ID.
func (s *SummaryService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*model.Summary, error) {
	if ownerID == "" {
		return nil, s.observe("get", errNoOwner())
	}

	rec, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, s.observe("get", translateRepoError(err, "получение сводки"))
	}
	s.observe("get", nil)
	return rec, nil
}

// Create сохраняет новую запись, назначая владельца и заголовок.
func (s *SummaryService) Create(ctx context.Context, ownerID string, in model.CreateSummaryInput) (*model.Summary, error) {
	if ownerID == "" {
		return nil, s.observe("create", errNoOwner())
	}

	rec, err := s.repo.Create(ctx, model.NewSummary{
		OwnerID:            ownerID,
		Title:              deriveTitle(in.FileName, in.Transcription, s.now().In(s.loc)),
		CreateSummaryInput: in,
	})
	if err != nil {
		return nil, s.observe("create", translateRepoError(err, "создание сводки"))
	}

	s.logger.Info("Сводка создана",
		slog.String("id", rec.ID.String()),
		slog.Bool("llm_generated", rec.LLMGenerated),
	)
	s.observe("create", nil)
	return rec, nil
}

// Update заменяет переданные поля записи. Пустой патч отклоняется
// без обращения к хранилищу. Замена summary без llm_generated
// помечает сводку как отредактированную вручную.
func (s *SummaryService) Update(ctx context.Context, ownerID string, id uuid.UUID, patch model.SummaryPatch) (*model.Summary, error) {
	if ownerID == "" {
		return nil, s.observe("update", errNoOwner())
	}
	if patch.IsEmpty() {
		return nil, s.observe("update", fmt.Errorf("%w: не передано ни одного изменяемого поля", ErrValidation))
	}

	if patch.Summary != nil && patch.LLMGenerated == nil {
		manual := false
		patch.LLMGenerated = &manual
	}

	rec, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, s.observe("update", translateRepoError(err, "обновление сводки"))
	}

	s.logger.Info("Сводка обновлена", slog.String("id", id.String()))
	s.observe("update", nil)
	return rec, nil
}

// Delete удаляет запись владельца.
func (s *SummaryService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if ownerID == "" {
		return s.observe("delete", errNoOwner())
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return s.observe("delete", translateRepoError(err, "удаление сводки"))
	}

	s.logger.Info("Сводка удалена", slog.String("id", id.String()))
	s.observe("delete", nil)
	return nil
}

// observe учитывает результат операции в метриках и возвращает err без изменений.
func (s *SummaryService) observe(operation string, err error) error {
	summaryOperationsTotal.WithLabelValues(operation, outcomeOf(err)).Inc()
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	default:
		return "storage_failure"
	}
}

func errNoOwner() error {
	return fmt.Errorf("%w: владелец не определён", ErrPermissionDenied)
}

// sortColumn сопоставляет имя поля API колонке хранилища.
func sortColumn(f model.SortField) string {
	if f == model.SortByUpdatedAt {
		return repository.ColumnModifiedAt
	}
	return repository.ColumnCreatedAt
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_999_999, loc)
}

// deriveTitle: имя файла, иначе первые 50 символов транскрипции
// (с "..." при обрезке), иначе заголовок с датой и временем.
func deriveTitle(fileName *string, transcription string, now time.Time) string {
	if fileName != nil {
		if name := strings.TrimSpace(*fileName); name != "" {
			return name
		}
	}

	text := strings.TrimSpace(transcription)
	if text != "" {
		if utf8.RuneCountInString(text) <= titlePrefixLength {
			return text
		}
		return string([]rune(text)[:titlePrefixLength]) + "..."
	}

	return "Встреча " + now.Format("2006-01-02 15:04")
}
