// handler.go — основной обработчик API.
// Объединяет health и бизнес-обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/dackow/meeting-summary/internal/api/errors"
	"github.com/dackow/meeting-summary/internal/api/middleware"
	"github.com/dackow/meeting-summary/internal/domain/model"
	"github.com/dackow/meeting-summary/internal/service"
	"github.com/dackow/meeting-summary/internal/validation"
)

// SummaryService — операции над сводками, нужные обработчикам.
// Реализуется service.SummaryService.
type SummaryService interface {
	List(ctx context.Context, ownerID string, params model.ListParams) ([]model.SummaryListItem, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*model.Summary, error)
	Create(ctx context.Context, ownerID string, in model.CreateSummaryInput) (*model.Summary, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch model.SummaryPatch) (*model.Summary, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// SummaryGenerator — генерация сводки. Реализуется service.GenerationService.
type SummaryGenerator interface {
	Generate(ctx context.Context, transcription string) (string, error)
}

// APIHandler — основной обработчик API.
type APIHandler struct {
	summaries    SummaryService
	generator    SummaryGenerator
	health       *HealthHandler
	openapiJSON  []byte
	maxBodyBytes int64
	loc          *time.Location
	logger       *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// openapiJSON — контракт для GET /openapi.json.
// maxBodyBytes — лимит тела запроса (MS_MAX_BODY_BYTES).
// loc — часовой пояс для дат без смещения в фильтрах списка (MS_TIMEZONE).
func NewAPIHandler(
	summaries SummaryService,
	generator SummaryGenerator,
	health *HealthHandler,
	openapiJSON []byte,
	maxBodyBytes int64,
	loc *time.Location,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		summaries:    summaries,
		generator:    generator,
		health:       health,
		openapiJSON:  openapiJSON,
		maxBodyBytes: maxBodyBytes,
		loc:          loc,
		logger:       logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// GetOpenAPI — встроенный OpenAPI контракт.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiJSON)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeObject читает тело запроса как один JSON-объект.
// При ошибке ответ уже записан и возвращается false.
func (h *APIHandler) decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)

	var body map[string]json.RawMessage
	err := dec.Decode(&body)
	if err == nil {
		// После объекта допускается только конец тела
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = extra
			if err == nil {
				err = errors.New("лишние данные после JSON-объекта")
			}
		}
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		apierrors.PayloadTooLarge(w, "Тело запроса превышает допустимый размер")
		return nil, false
	case err != nil:
		apierrors.MalformedRequest(w, "Тело запроса не является корректным JSON-объектом")
		return nil, false
	case body == nil:
		// JSON null
		apierrors.MalformedRequest(w, "Ожидается JSON-объект")
		return nil, false
	}
	return body, true
}

// writeValidationError записывает ошибку валидации с деталями по полям.
func writeValidationError(w http.ResponseWriter, err error) {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		apierrors.ValidationError(w, "Ошибка валидации", fe)
		return
	}
	apierrors.ValidationError(w, err.Error(), nil)
}

// writeServiceError сопоставляет ошибку сервиса HTTP-ответу.
// Внутренние детали пишутся только в лог.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, "Ошибка валидации", nil)
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Сводка не найдена")
	case errors.Is(err, service.ErrPermissionDenied):
		h.logger.Warn("Доступ запрещён",
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.Forbidden(w, "Доступ запрещён")
	case errors.Is(err, service.ErrGenerationFailed):
		h.logger.Error("Ошибка генерации сводки",
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		apierrors.GenerationFailed(w, "Не удалось сгенерировать сводку")
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
