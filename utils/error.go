package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorStorageUnavailable wraps driver-level failures so handlers can map
// them to 503 instead of leaking SQL errors to clients.
var ErrorStorageUnavailable = errors.New("storage unavailable")

// ErrorInconsistency marks a mismatch between an order and its daily
// aggregate detected during reconciliation.
var ErrorInconsistency = errors.New("aggregate inconsistency")

// ValidationError carries per-field failures for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, reason := range e.Fields {
		return fmt.Sprintf("validation failed: %s %s", field, reason)
	}
	return "validation failed"
}

func NewValidationError(field string, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
