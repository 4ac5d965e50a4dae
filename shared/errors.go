package shared

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status alongside the underlying error so the
// fiber error handler can render a proper response envelope.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return NewAppError(http.StatusForbidden, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewGoneError(err error, message string) *AppError {
	return NewAppError(http.StatusGone, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message)
}

// GetAppError unwraps err looking for an AppError.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Share link guard failures. These are the only tracking-adjacent errors
// that surface to viewers; everything else is absorbed and logged.
var (
	ErrLinkInvalid   = NewNotFoundError(nil, "Link invalid")
	ErrLinkExpired   = NewGoneError(nil, "Link expired")
	ErrLinkExhausted = NewForbiddenError(nil, "Link exhausted")
)
