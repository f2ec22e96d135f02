package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes for the progression engine and its persistence layer.
const (
	// Domain errors
	ErrCodeUpgradeNotFound = "UPGRADE_NOT_FOUND"
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrCodeSlotInUse       = "SLOT_IN_USE"

	// Persistence errors
	ErrCodeSaveNotFound  = "SAVE_NOT_FOUND"
	ErrCodeSaveCorrupt   = "SAVE_CORRUPT"
	ErrCodeDatabaseError = "DATABASE_ERROR"

	// Config errors
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"

	// Validation errors
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Outbound integration errors
	ErrCodePublishFailed = "PUBLISH_FAILED"
)

// ProgressionError represents an error raised outside the engine's declined-action path.
type ProgressionError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProgressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProgressionError) Unwrap() error {
	return e.Err
}

// NewProgressionError creates a new ProgressionError.
func NewProgressionError(code, message string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err is (or wraps) a ProgressionError with the given code.
func HasCode(err error, code string) bool {
	var pe *ProgressionError
	return stderrors.As(err, &pe) && pe.Code == code
}

// ErrUpgradeNotFound returns an error when an upgrade name is not in the catalog.
func ErrUpgradeNotFound(name string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeUpgradeNotFound,
		Message: fmt.Sprintf("upgrade not found: %s", name),
	}
}

// ErrSessionNotFound returns an error when a session is not open.
func ErrSessionNotFound(sessionID string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeSessionNotFound,
		Message: fmt.Sprintf("session not found: %s", sessionID),
	}
}

// ErrSaveNotFound returns an error when no save exists for a slot.
// Callers treat it as a fresh start.
func ErrSaveNotFound(slot string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeSaveNotFound,
		Message: fmt.Sprintf("no save for slot: %s", slot),
	}
}

// ErrSaveCorrupt returns an error when a required save field is missing or malformed.
func ErrSaveCorrupt(reason string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeSaveCorrupt,
		Message: fmt.Sprintf("corrupt save: %s", reason),
		Err:     err,
	}
}

// ErrSlotInUse returns an error when a slot cannot change while a session holds it.
func ErrSlotInUse(slot string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeSlotInUse,
		Message: fmt.Sprintf("slot is open in a session: %s", slot),
	}
}

// ErrDatabaseError wraps database errors.
func ErrDatabaseError(operation string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeDatabaseError,
		Message: fmt.Sprintf("database error during %s", operation),
		Err:     err,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(reason string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeConfigInvalid,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
	}
}

// ErrValidationFailed returns a validation error.
func ErrValidationFailed(field, reason string) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
	}
}

// ErrPublishFailed returns an error when an unlock could not be delivered.
func ErrPublishFailed(kind, title string, err error) *ProgressionError {
	return &ProgressionError{
		Code:    ErrCodePublishFailed,
		Message: fmt.Sprintf("failed to publish %s unlock: %s", kind, title),
		Err:     err,
	}
}
