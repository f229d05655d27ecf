package cli

import (
	"errors"
	"fmt"

	apperrors "task-manager/internal/errors"
	"task-manager/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}

	if apperrors.IsAppError(err) {
		return fmt.Errorf("failed to %s: %s", operation, apperrors.GetUserMessage(err))
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		return errors.New(validationErr.GetUserFriendlyMessage())
	}

	if apperrors.IsAppError(err) {
		return errors.New(apperrors.GetUserMessage(err))
	}

	return err
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return apperrors.IsErrorType(err, apperrors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound)
}

// IsUnauthenticatedError checks if an error means nobody is signed in
func (eh *ErrorHandler) IsUnauthenticatedError(err error) bool {
	return apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthenticated)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return apperrors.GetErrorCode(err)
}
