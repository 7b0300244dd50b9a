package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// Validator is the shared struct validator for request payloads.
var Validator = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// DecodeJSON reads a single JSON object from the body into dst and validates
// it. Failures are returned as *AppError with status 400.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return BadRequest("invalid payload", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return BadRequest("payload must contain a single JSON object", err)
	}
	if err := Validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, FieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag()})
			}
			return ValidationFailed(fields, err)
		}
		return BadRequest("invalid payload", err)
	}
	return nil
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// WriteError renders err using the canonical error shape. AppErrors carry
// their own status; errors that reason maps to a code are reported as 422;
// anything else is a 500.
func WriteError(w http.ResponseWriter, err error, reason func(error) string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	if reason != nil {
		if code := reason(err); code != "" {
			JSONError(w, http.StatusUnprocessableEntity, code, err.Error(), nil)
			return
		}
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
