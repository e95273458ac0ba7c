package service

import (
	"errors"
	"fmt"

	"github.com/shenikar/city_alert/internal/models"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid department credentials")
	ErrForbidden          = errors.New("department is not assigned to this incident")
)

// Виды дубликатов
const (
	DuplicateExact = "exact"
	DuplicateNear  = "near"
)

// DuplicateError - обращение совпало с недавним инцидентом
type DuplicateError struct {
	Kind     string
	Existing *models.Incident
	// TimeAgo заполняется только для DuplicateNear, например "5 minutes ago"
	TimeAgo string
}

func (e *DuplicateError) Error() string {
	if e.Kind == DuplicateNear {
		return fmt.Sprintf("an active incident was reported at this location %s", e.TimeAgo)
	}
	return "similar incident already reported"
}

// ChatError - ошибка чата с сообщением для клиента
type ChatError struct {
	Message string
	Err     error
}

func (e *ChatError) Error() string {
	return e.Message
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
