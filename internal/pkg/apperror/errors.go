package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicateEmail ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeActiveOTP      ErrorCode = "ACTIVE_OTP_EXISTS"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeDatabase       ErrorCode = "DATABASE_ERROR"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap оборачивает ошибку нижнего слоя ровно один раз, добавляя код и сообщение.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeDuplicateEmail, ErrCodeActiveOTP:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) &&
		(appErr.Code == ErrCodeDuplicateEmail || appErr.Code == ErrCodeActiveOTP)
}

var (
	ErrUserNotFound   = New(ErrCodeNotFound, "пользователь не найден")
	ErrOTPNotFound    = New(ErrCodeNotFound, "одноразовый код не найден")
	ErrDuplicateEmail = New(ErrCodeDuplicateEmail, "email уже зарегистрирован")
	ErrActiveOTP      = New(ErrCodeActiveOTP, "для пользователя уже есть активный одноразовый код")
	ErrOTPInvalid     = New(ErrCodeBadRequest, "одноразовый код неверен или истёк")
	ErrUnauthorized   = New(ErrCodeUnauthorized, "требуется авторизация")
)
