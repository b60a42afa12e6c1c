// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков. Каждый ответ несёт поле ok;
// ошибки дополняются стабильным машинным кодом и человеко-читаемым текстом.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Стабильные коды ошибок API. Транспортный статус зеркалирует код.
const (
	CodeValidation           = "validation_error"
	CodeConflict             = "conflict"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeUnauthorized         = "unauthorized"
	CodeSubscriptionRequired = "subscription_required"
	CodeConfig               = "config_error"
	CodeUpstream             = "upstream_error"
	CodeNotFound             = "not_found"
	CodeRateLimited          = "rate_limited"
	CodeInternal             = "internal_error"
)

// Response описывает стандартную структуру JSON-ответа с ошибкой
// или простого успешного ответа без данных.
type Response struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// OK возвращает успешный Response без данных.
func OK() Response {
	return Response{OK: true}
}

// Err возвращает Response с кодом и сообщением ошибки.
func Err(code, msg string) Response {
	return Response{
		OK:    false,
		Code:  code,
		Error: msg,
	}
}

// ValidationError формирует Response с кодом validation_error на основе
// ошибок валидации. Каждое нарушение формируется в человеко-читаемый
// текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Err(CodeValidation, strings.Join(errsMsgs, ", "))
}
