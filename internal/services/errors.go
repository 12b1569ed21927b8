// pay-by-plan/internal/services/errors.go
package services

import "fmt"

// ValidationError - единственный доменный вид ошибки: проблема, которую
// может исправить вызывающий (плохие даты, неположительная сумма, платеж
// по завершенному или неактивному layby). Обработчики переводят ее в 400;
// все остальные ошибки считаются инфраструктурными.
type ValidationError struct {
	Field   string // Поле, к которому относится ошибка. Пусто, если ошибка общая.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func validationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
