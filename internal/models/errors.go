package models

import (
	"errors"
	"fmt"
)

// Ошибки домена. Слои оборачивают их через fmt.Errorf("%w"), HTTP-обработчики
// сопоставляют их со статусами через errors.Is.
var (
	// ErrValidation — некорректный ввод, исправимый клиентом (400).
	ErrValidation = errors.New("validation error")
	// ErrUnauthenticated — не удалось определить пользователя (401).
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound — запись отсутствует или принадлежит другому пользователю (404).
	ErrNotFound = errors.New("not found")
	// ErrConflict — запись уже существует (409).
	ErrConflict = errors.New("already exists")
	// ErrEmailDelivery — сбой сервиса доставки писем (500).
	ErrEmailDelivery = errors.New("email delivery failed")
)

// ValidationError ошибка ввода с сообщением для клиента.
// errors.Is(err, ErrValidation) для неё истинно.
type ValidationError struct {
	Msg string
}

// NewValidationError создаёт ValidationError с форматированным сообщением.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Is сопоставляет ValidationError с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
