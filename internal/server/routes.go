// routes.go — таблица маршрутов и привязка path-параметров.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/dackow/meeting-summary/internal/api/errors"
)

// API — обработчики всех операций контракта.
type API interface {
	// GET /summaries
	ListSummaries(w http.ResponseWriter, r *http.Request)
	// POST /summaries
	CreateSummary(w http.ResponseWriter, r *http.Request)
	// GET /summaries/{id}
	GetSummary(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// PUT /summaries/{id}
	UpdateSummary(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// DELETE /summaries/{id}
	DeleteSummary(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// POST /generate-summary
	GenerateSummary(w http.ResponseWriter, r *http.Request)
	// GET /health/live
	HealthLive(w http.ResponseWriter, r *http.Request)
	// GET /health/ready
	HealthReady(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// GET /openapi.json
	GetOpenAPI(w http.ResponseWriter, r *http.Request)
}

// HandlerFromMux регистрирует маршруты API в router.
func HandlerFromMux(api API, r chi.Router) {
	r.Get("/summaries", api.ListSummaries)
	r.Post("/summaries", api.CreateSummary)
	r.Get("/summaries/{id}", withSummaryID(api.GetSummary))
	r.Put("/summaries/{id}", withSummaryID(api.UpdateSummary))
	r.Delete("/summaries/{id}", withSummaryID(api.DeleteSummary))
	r.Post("/generate-summary", api.GenerateSummary)

	r.Get("/health/live", api.HealthLive)
	r.Get("/health/ready", api.HealthReady)
	r.Get("/metrics", api.GetMetrics)
	r.Get("/openapi.json", api.GetOpenAPI)
}

// withSummaryID привязывает {id} как UUID.
// Значение, не являющееся UUID, не может адресовать сводку, поэтому 404.
func withSummaryID(next func(http.ResponseWriter, *http.Request, openapi_types.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			apierrors.NotFound(w, "Сводка не найдена")
			return
		}
		next(w, r, id)
	}
}
