package handlers

import (
	"net/http"

	"github.com/dackow/meeting-summary/internal/validation"
)

// generateResponse — ответ POST /generate-summary.
type generateResponse struct {
	Summary string `json:"summary"`
}

// GenerateSummary — POST /generate-summary. Результат не сохраняется.
func (h *APIHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeObject(w, r)
	if !ok {
		return
	}

	transcription, err := validation.ValidateGenerate(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	summary, err := h.generator.Generate(r.Context(), transcription)
	if err != nil {
		h.writeServiceError(w, r, "generate", err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Summary: summary})
}
