// owner.go — определение владельца запроса.
// Все операции со сводками выполняются от имени владельца из контекста.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/dackow/meeting-summary/internal/api/errors"
)

// ErrNoOwner — владелец запроса не определён.
var ErrNoOwner = errors.New("владелец запроса не определён")

// OwnerResolver определяет владельца по входящему запросу.
type OwnerResolver interface {
	ResolveOwner(r *http.Request) (string, error)
}

// StaticOwnerResolver — один владелец для всех запросов (MS_AUTH_MODE=static).
type StaticOwnerResolver struct {
	OwnerID string
}

// ResolveOwner реализует OwnerResolver.
func (s StaticOwnerResolver) ResolveOwner(_ *http.Request) (string, error) {
	if s.OwnerID == "" {
		return "", ErrNoOwner
	}
	return s.OwnerID, nil
}

// ClaimsOwnerResolver — владелец из sub JWT. Требует JWTAuth.Middleware() раньше в цепочке.
type ClaimsOwnerResolver struct{}

// ResolveOwner реализует OwnerResolver.
func (ClaimsOwnerResolver) ResolveOwner(r *http.Request) (string, error) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil || claims.Subject == "" {
		return "", ErrNoOwner
	}
	return claims.Subject, nil
}

// RequireOwner возвращает middleware, помещающий владельца в контекст.
// Если владелец не определён — 401.
func RequireOwner(resolver OwnerResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := resolver.ResolveOwner(r)
			if err != nil {
				logger.Debug("Владелец запроса не определён",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				apierrors.Unauthorized(w, "Не удалось определить пользователя")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// WithOwner возвращает контекст с владельцем.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ContextKeyOwner, owner)
}

// OwnerFromContext извлекает владельца из контекста.
// Возвращает пустую строку, если владелец не задан.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ContextKeyOwner).(string)
	return owner
}
