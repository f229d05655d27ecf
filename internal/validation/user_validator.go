package validation

import (
	"strings"

	"task-manager/internal/config"
)

const maxNameLength = 100

// UserValidator validates account input
type UserValidator struct {
	validator *Validator
}

// NewUserValidator creates a user validator with default limits
func NewUserValidator() *UserValidator {
	return &UserValidator{validator: NewValidator()}
}

// NewUserValidatorWithConfig creates a user validator using configured limits
func NewUserValidatorWithConfig(cfg *config.Config) *UserValidator {
	return &UserValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateEmail validates an email address
func (uv *UserValidator) ValidateEmail(email string) error {
	validationError := NewValidationError()
	email = strings.TrimSpace(email)

	if email == "" {
		validationError.AddRequiredError("email")
		return validationError
	}
	if !uv.validator.IsValidEmail(email) {
		validationError.AddInvalidFormatError("email", email, "name@example.com")
	}

	return validationError.OrNil()
}

// ValidatePassword validates a new password against the configured minimum length
func (uv *UserValidator) ValidatePassword(password string) error {
	validationError := NewValidationError()

	if password == "" {
		validationError.AddRequiredError("password")
		return validationError
	}
	// bcrypt ignores everything past 72 bytes.
	if minLen := uv.validator.passwordMinLength(); len([]rune(password)) < minLen || len(password) > 72 {
		validationError.AddInvalidLengthError("password", nil, minLen, 72)
	}

	return validationError.OrNil()
}

// ValidateRegistration validates the input of a new account
func (uv *UserValidator) ValidateRegistration(email, password, name string) error {
	validationError := NewValidationError()

	validationError.Merge("email", uv.ValidateEmail(email))
	validationError.Merge("password", uv.ValidatePassword(password))

	if name != "" {
		if !uv.validator.IsValidStringLength(name, 0, maxNameLength) {
			validationError.AddInvalidLengthError("name", name, 0, maxNameLength)
		}
		if !uv.validator.HasNoControlCharacters(name) {
			validationError.AddInvalidCharacterError("name", name)
		}
	}

	return validationError.OrNil()
}

// ValidateCredentials only checks that both login fields are present
func (uv *UserValidator) ValidateCredentials(email, password string) error {
	validationError := NewValidationError()

	if strings.TrimSpace(email) == "" {
		validationError.AddRequiredError("email")
	}
	if password == "" {
		validationError.AddRequiredError("password")
	}

	return validationError.OrNil()
}
