package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/dackow/meeting-summary/internal/config"
)

// recordingAPI запоминает вызванную операцию и привязанный id.
type recordingAPI struct {
	op string
	id openapi_types.UUID
}

func (a *recordingAPI) mark(w http.ResponseWriter, op string) {
	a.op = op
	w.WriteHeader(http.StatusTeapot)
}

func (a *recordingAPI) ListSummaries(w http.ResponseWriter, _ *http.Request) { a.mark(w, "list") }
func (a *recordingAPI) CreateSummary(w http.ResponseWriter, _ *http.Request) { a.mark(w, "create") }
func (a *recordingAPI) GetSummary(w http.ResponseWriter, _ *http.Request, id openapi_types.UUID) {
	a.id = id
	a.mark(w, "get")
}
func (a *recordingAPI) UpdateSummary(w http.ResponseWriter, _ *http.Request, id openapi_types.UUID) {
	a.id = id
	a.mark(w, "update")
}
func (a *recordingAPI) DeleteSummary(w http.ResponseWriter, _ *http.Request, id openapi_types.UUID) {
	a.id = id
	a.mark(w, "delete")
}
func (a *recordingAPI) GenerateSummary(w http.ResponseWriter, _ *http.Request) { a.mark(w, "generate") }
func (a *recordingAPI) HealthLive(w http.ResponseWriter, _ *http.Request)      { a.mark(w, "live") }
func (a *recordingAPI) HealthReady(w http.ResponseWriter, _ *http.Request)     { a.mark(w, "ready") }
func (a *recordingAPI) GetMetrics(w http.ResponseWriter, _ *http.Request)      { a.mark(w, "metrics") }
func (a *recordingAPI) GetOpenAPI(w http.ResponseWriter, _ *http.Request)      { a.mark(w, "openapi") }

const testID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func TestRoutes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		wantOp string
	}{
		{http.MethodGet, "/summaries", "list"},
		{http.MethodPost, "/summaries", "create"},
		{http.MethodGet, "/summaries/" + testID, "get"},
		{http.MethodPut, "/summaries/" + testID, "update"},
		{http.MethodDelete, "/summaries/" + testID, "delete"},
		{http.MethodPost, "/generate-summary", "generate"},
		{http.MethodGet, "/health/live", "live"},
		{http.MethodGet, "/health/ready", "ready"},
		{http.MethodGet, "/metrics", "metrics"},
		{http.MethodGet, "/openapi.json", "openapi"},
	}

	for _, tt := range tests {
		api := &recordingAPI{}
		router := NewRouter(&config.Config{}, api)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

		if api.op != tt.wantOp {
			t.Errorf("%s %s: вызвана операция %q, ожидалась %q", tt.method, tt.path, api.op, tt.wantOp)
		}
		if tt.wantOp == "get" && api.id.String() != testID {
			t.Errorf("id = %s, ожидался %s", api.id, testID)
		}
	}
}

func TestRoutes_InvalidID(t *testing.T) {
	api := &recordingAPI{}
	router := NewRouter(&config.Config{}, api)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/summaries/abc", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("%s: статус = %d, ожидался 404", method, w.Code)
		}
		if api.op != "" {
			t.Errorf("%s: handler не должен вызываться, вызван %q", method, api.op)
		}
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	router := NewRouter(&config.Config{}, &recordingAPI{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/summaries/"+testID, nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("статус = %d, ожидался 405", w.Code)
	}
}

func TestWithExclusions(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	api := &recordingAPI{}
	router := NewRouter(&config.Config{}, api, WithExclusions(deny, "/health/", "/metrics"))

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/health/live", http.StatusTeapot},
		{"/metrics", http.StatusTeapot},
		{"/summaries", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.wantCode {
			t.Errorf("%s: статус = %d, ожидался %d", tt.path, w.Code, tt.wantCode)
		}
	}
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.example.com"}}
	router := NewRouter(cfg, &recordingAPI{})

	req := httptest.NewRequest(http.MethodOptions, "/summaries", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/summaries", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("чужой origin получил Access-Control-Allow-Origin = %q", got)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{Port: 0, ShutdownTimeout: time.Second}
	srv := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &recordingAPI{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() вернул ошибку: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() не завершился после отмены контекста")
	}
}
