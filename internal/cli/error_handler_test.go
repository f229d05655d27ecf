package cli

import (
	"errors"
	"fmt"
	"testing"

	apperrors "task-manager/internal/errors"
	"task-manager/internal/validation"

	"github.com/stretchr/testify/assert"
)

func titleRequired() *validation.ValidationError {
	return &validation.ValidationError{
		Errors: []validation.FieldError{
			{Field: "title", Type: validation.ErrorTypeRequired, Message: "title is required"},
		},
	}
}

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name      string
		operation string
		err       error
		expected  string
	}{
		{"Validation error", "create task", apperrors.NewValidationError("invalid input", nil), "failed to create task: invalid input"},
		{"Field validation error", "create task", titleRequired(), "failed to create task: title is required"},
		{"Wrapped field validation error", "create task", fmt.Errorf("draft: %w", titleRequired()), "failed to create task: title is required"},
		{"Not found error", "show task", apperrors.NewNotFoundError("task", "123"), "failed to show task: task not found: 123"},
		{"Unauthenticated error", "log in", apperrors.NewUnauthenticatedError("invalid credentials"), "failed to log in: invalid credentials"},
		{"Database error", "save task", apperrors.NewDatabaseError("insert", errors.New("timeout")), "failed to save task: A database error occurred. Please try again."},
		{"Regular error", "process", errors.New("regular error"), "failed to process: regular error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, eh.Handle(tt.operation, tt.err), tt.expected)
		})
	}

	t.Run("regular errors stay unwrappable", func(t *testing.T) {
		cause := errors.New("disk full")
		assert.ErrorIs(t, eh.Handle("save", cause), cause)
	})
}

func TestErrorHandler_HandleSimple(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Validation error", apperrors.NewValidationError("invalid input", nil), "invalid input"},
		{"Field validation error", titleRequired(), "title is required"},
		{"Not found error", apperrors.NewNotFoundError("task", "123"), "task not found: 123"},
		{"Database error", apperrors.NewDatabaseError("insert", errors.New("timeout")), "A database error occurred. Please try again."},
		{"Regular error", errors.New("regular error"), "regular error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, eh.HandleSimple(tt.err), tt.expected)
		})
	}
}

func TestErrorHandler_Classification(t *testing.T) {
	eh := NewErrorHandler()

	validationErr := apperrors.NewValidationError("invalid input", nil)
	notFound := apperrors.NewNotFoundError("task", "123")
	unauthenticated := apperrors.NewUnauthenticatedError("not signed in")
	plain := errors.New("regular error")

	assert.True(t, eh.IsValidationError(validationErr))
	assert.True(t, eh.IsValidationError(titleRequired()))
	assert.False(t, eh.IsValidationError(notFound))
	assert.False(t, eh.IsValidationError(plain))

	assert.True(t, eh.IsNotFoundError(notFound))
	assert.False(t, eh.IsNotFoundError(validationErr))

	assert.True(t, eh.IsUnauthenticatedError(unauthenticated))
	assert.False(t, eh.IsUnauthenticatedError(plain))

	assert.Equal(t, "NOT_FOUND", eh.GetErrorCode(notFound))
	assert.Equal(t, "UNKNOWN_ERROR", eh.GetErrorCode(plain))
}
