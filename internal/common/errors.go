package common

import "net/http"

// AppError is an edge failure that already knows its code and HTTP status.
// Engine errors are plain sentinels and are mapped by WriteError instead.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// BadRequest reports a payload that could not be decoded.
func BadRequest(message string, err error) *AppError {
	return NewAppError("BAD_REQUEST", message, http.StatusBadRequest, err)
}

// ValidationFailed reports a decoded payload whose fields broke struct rules.
func ValidationFailed(fields []FieldError, err error) *AppError {
	appErr := NewAppError("VALIDATION_FAILED", "payload failed validation", http.StatusBadRequest, err)
	appErr.Details = fields
	return appErr
}
