// errors.go — ошибки бизнес-логики сервисного слоя.
// Каждая ошибка сервиса относится ровно к одному из видов ниже
// и проверяется через errors.Is.
package service

import (
	"errors"
	"fmt"

	"github.com/dackow/meeting-summary/internal/repository"
)

var (
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNotFound — запись не найдена или принадлежит другому владельцу.
	ErrNotFound = errors.New("сводка не найдена")
	// ErrPermissionDenied — хранилище отказало в доступе.
	ErrPermissionDenied = errors.New("доступ запрещён")
	// ErrStorageFailure — прочий сбой хранилища.
	ErrStorageFailure = errors.New("ошибка хранилища")
	// ErrGenerationFailed — сбой генерации сводки.
	ErrGenerationFailed = errors.New("не удалось сгенерировать сводку")
)

// translateRepoError сопоставляет ошибку репозитория виду ошибки сервиса.
// Исходная ошибка остаётся в цепочке для логирования.
func translateRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrPermissionDenied):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
	}
}
