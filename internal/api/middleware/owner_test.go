package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func captureOwner(dst *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireOwner_Static(t *testing.T) {
	var got string
	handler := RequireOwner(StaticOwnerResolver{OwnerID: "local-user"}, testLogger())(captureOwner(&got))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("статус = %d, ожидался 204", w.Code)
	}
	if got != "local-user" {
		t.Errorf("owner = %q, ожидался local-user", got)
	}
}

func TestRequireOwner_StaticEmpty(t *testing.T) {
	var got string
	handler := RequireOwner(StaticOwnerResolver{}, testLogger())(captureOwner(&got))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", w.Code)
	}
}

func TestRequireOwner_Claims(t *testing.T) {
	var got string
	handler := RequireOwner(ClaimsOwnerResolver{}, testLogger())(captureOwner(&got))

	req := httptest.NewRequest(http.MethodGet, "/summaries", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextKeyClaims, &AuthClaims{Subject: "user-42"}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("статус = %d, ожидался 204", w.Code)
	}
	if got != "user-42" {
		t.Errorf("owner = %q, ожидался user-42", got)
	}
}

func TestRequireOwner_ClaimsMissing(t *testing.T) {
	var got string
	handler := RequireOwner(ClaimsOwnerResolver{}, testLogger())(captureOwner(&got))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", w.Code)
	}
}

func TestOwnerFromContext_Empty(t *testing.T) {
	if got := OwnerFromContext(context.Background()); got != "" {
		t.Errorf("owner = %q, ожидалась пустая строка", got)
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/summaries", nil))

		if !strings.Contains(buf.String(), tt.wantLevel) {
			t.Errorf("статус %d: лог %q не содержит %s", tt.status, buf.String(), tt.wantLevel)
		}
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	var buf bytes.Buffer
	var inCtx string
	handler := RequestLogger(slog.New(slog.NewTextHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inCtx = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Идентификатор клиента сохраняется
	req := httptest.NewRequest(http.MethodGet, "/summaries?sort=created_at", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "req-123" {
		t.Errorf("%s ответа = %q, ожидался req-123", HeaderRequestID, got)
	}
	if inCtx != "req-123" {
		t.Errorf("request_id в контексте = %q", inCtx)
	}
	if !strings.Contains(buf.String(), "request_id=req-123") || !strings.Contains(buf.String(), `query="sort=created_at"`) {
		t.Errorf("лог не содержит request_id/query: %s", buf.String())
	}

	// Без заголовка генерируется UUID
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries", nil))
	if got := w.Header().Get(HeaderRequestID); len(got) != 36 {
		t.Errorf("сгенерированный %s = %q, ожидался UUID", HeaderRequestID, got)
	}
}

func TestRequestLogger_HealthProbesAtDebug(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(slog.New(slog.NewTextHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if buf.Len() != 0 {
		t.Errorf("успешная probe залогирована выше DEBUG: %s", buf.String())
	}
}

func TestRoutePattern_AfterRouting(t *testing.T) {
	var got string
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			got = routePattern(r)
		})
	})
	router.Use(MetricsMiddleware())
	router.Get("/summaries/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries/5b4c8e0e-0000-4000-8000-000000000001", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", w.Code)
	}
	if got != "/summaries/{id}" {
		t.Errorf("routePattern = %q, ожидался /summaries/{id}", got)
	}
}

func TestRoutePattern_NoRouteContext(t *testing.T) {
	if got := routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)); got != unmatchedPath {
		t.Errorf("routePattern = %q, ожидался %q", got, unmatchedPath)
	}
}
