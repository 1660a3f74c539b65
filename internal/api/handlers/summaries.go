// summaries.go — обработчики CRUD сводок встреч.
package handlers

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/dackow/meeting-summary/internal/api/middleware"
	"github.com/dackow/meeting-summary/internal/domain/model"
	"github.com/dackow/meeting-summary/internal/validation"
)

// summaryListItem — элемент ответа GET /summaries.
type summaryListItem struct {
	ID        openapi_types.UUID `json:"id"`
	Title     string             `json:"title"`
	FileName  *string            `json:"file_name"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// summaryResponse — полная сводка без владельца.
// Время изменения хранится как modified_at, наружу отдаётся как updated_at.
type summaryResponse struct {
	ID            openapi_types.UUID `json:"id"`
	Title         string             `json:"title"`
	FileName      *string            `json:"file_name"`
	Transcription string             `json:"transcription"`
	Summary       string             `json:"summary"`
	LLMGenerated  bool               `json:"llm_generated"`
	Notes         *string            `json:"notes"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func toSummaryResponse(s *model.Summary) summaryResponse {
	return summaryResponse{
		ID:            s.ID,
		Title:         s.Title,
		FileName:      s.FileName,
		Transcription: s.Transcription,
		Summary:       s.Summary,
		LLMGenerated:  s.LLMGenerated,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}
}

func toListResponse(items []model.SummaryListItem) []summaryListItem {
	resp := make([]summaryListItem, 0, len(items))
	for _, it := range items {
		resp = append(resp, summaryListItem{
			ID:        it.ID,
			Title:     it.Title,
			FileName:  it.FileName,
			CreatedAt: it.CreatedAt.UTC(),
			UpdatedAt: it.UpdatedAt.UTC(),
		})
	}
	return resp
}

// ListSummaries — GET /summaries.
func (h *APIHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	params, err := validation.ValidateListQuery(r.URL.Query(), h.loc)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	items, err := h.summaries.List(r.Context(), middleware.OwnerFromContext(r.Context()), params)
	if err != nil {
		h.writeServiceError(w, r, "list", err)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(items))
}

// GetSummary — GET /summaries/{id}.
func (h *APIHandler) GetSummary(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	s, err := h.summaries.Get(r.Context(), middleware.OwnerFromContext(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, "get", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(s))
}

// CreateSummary — POST /summaries. Возвращает 201 и Location созданной сводки.
func (h *APIHandler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeObject(w, r)
	if !ok {
		return
	}

	in, err := validation.ValidateCreate(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	s, err := h.summaries.Create(r.Context(), middleware.OwnerFromContext(r.Context()), in)
	if err != nil {
		h.writeServiceError(w, r, "create", err)
		return
	}

	w.Header().Set("Location", "/summaries/"+s.ID.String())
	writeJSON(w, http.StatusCreated, toSummaryResponse(s))
}

// UpdateSummary — PUT /summaries/{id}, частичная замена полей.
func (h *APIHandler) UpdateSummary(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	body, ok := h.decodeObject(w, r)
	if !ok {
		return
	}

	patch, err := validation.ValidateUpdate(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	s, err := h.summaries.Update(r.Context(), middleware.OwnerFromContext(r.Context()), id, patch)
	if err != nil {
		h.writeServiceError(w, r, "update", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(s))
}

// DeleteSummary — DELETE /summaries/{id}. 204 без тела.
func (h *APIHandler) DeleteSummary(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	if err := h.summaries.Delete(r.Context(), middleware.OwnerFromContext(r.Context()), id); err != nil {
		h.writeServiceError(w, r, "delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
