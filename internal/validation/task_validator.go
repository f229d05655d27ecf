package validation

import (
	"task-manager/internal/config"
	"task-manager/internal/domain"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator with default limits
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

// NewTaskValidatorWithConfig creates a task validator using configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateTitle validates a task title for creation or update
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()
	trimmed := tv.validator.TrimAndValidateString(title)

	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("title")
		return validationError
	}

	minLen, maxLen := tv.validator.titleMinLength(), tv.validator.titleMaxLength()
	if !tv.validator.IsValidStringLength(trimmed, minLen, maxLen) {
		validationError.AddInvalidLengthError("title", trimmed, minLen, maxLen)
	}

	if !tv.validator.HasNoControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("title", trimmed)
	}

	return validationError.OrNil()
}

// ValidateDescription validates a task description. Empty is allowed.
func (tv *TaskValidator) ValidateDescription(description string) error {
	validationError := NewValidationError()

	maxLen := tv.validator.descriptionMaxLength()
	if !tv.validator.IsValidStringLength(description, 0, maxLen) {
		validationError.AddInvalidLengthError("description", description, 0, maxLen)
	}

	return validationError.OrNil()
}

func (tv *TaskValidator) validateDueDate(validationError *ValidationError, due *domain.Date) {
	if due != nil && !tv.validator.IsReasonableDueDate(*due) {
		validationError.AddInvalidRangeError("due_date", due.String(), "year must be between 1900 and 9999")
	}
}

// ValidateDraft validates the fields of a task about to be created
func (tv *TaskValidator) ValidateDraft(draft domain.TaskDraft) error {
	validationError := NewValidationError()

	validationError.Merge("title", tv.ValidateTitle(draft.Title))
	validationError.Merge("description", tv.ValidateDescription(draft.Description))
	tv.validateDueDate(validationError, draft.DueDate)

	if !draft.Priority.IsValid() {
		validationError.AddInvalidValueError("priority", draft.Priority, "must be one of low, medium, high")
	}
	if !draft.Status.IsValid() {
		validationError.AddInvalidValueError("status", draft.Status, "must be one of todo, in-progress, completed")
	}

	return validationError.OrNil()
}

// ValidatePatch validates the present fields of a partial update
func (tv *TaskValidator) ValidatePatch(patch domain.TaskPatch) error {
	validationError := NewValidationError()

	if patch.IsEmpty() {
		validationError.AddInvalidValueError("update", nil, "at least one field must be changed")
		return validationError
	}

	if patch.Title != nil {
		validationError.Merge("title", tv.ValidateTitle(*patch.Title))
	}
	if patch.Description != nil {
		validationError.Merge("description", tv.ValidateDescription(*patch.Description))
	}
	if !patch.ClearDueDate {
		tv.validateDueDate(validationError, patch.DueDate)
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		validationError.AddInvalidValueError("priority", *patch.Priority, "must be one of low, medium, high")
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		validationError.AddInvalidValueError("status", *patch.Status, "must be one of todo, in-progress, completed")
	}

	return validationError.OrNil()
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id string) error {
	if !tv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("task_id", id, "UUID")
		return validationError
	}
	return nil
}

// GetValidTitle returns a cleaned task title if valid
func (tv *TaskValidator) GetValidTitle(title string) (string, error) {
	if err := tv.ValidateTitle(title); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(title), nil
}
