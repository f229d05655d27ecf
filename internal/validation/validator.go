package validation

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"task-manager/internal/config"
	"task-manager/internal/domain"

	"github.com/google/uuid"
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance using default limits
func NewValidator() *Validator {
	return &Validator{config: config.NewConfig()}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	if cfg == nil {
		return NewValidator()
	}
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed rune count is within [min, max].
// A max of 0 means unbounded.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	if length < min {
		return false
	}
	return max <= 0 || length <= max
}

// HasNoControlCharacters rejects newlines, tabs and other control runes.
func (v *Validator) HasNoControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) == -1
}

// IsValidEmail checks for a bare address such as name@example.com
func (v *Validator) IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// IsValidID checks if an identifier is a UUID
func (v *Validator) IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsReasonableDueDate checks that a due date has a four-digit year.
func (v *Validator) IsReasonableDueDate(d domain.Date) bool {
	return d.Year >= 1900 && d.Year <= 9999
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

func (v *Validator) titleMinLength() int {
	return v.config.Validation.TitleMinLength
}

func (v *Validator) titleMaxLength() int {
	return v.config.Validation.TitleMaxLength
}

func (v *Validator) descriptionMaxLength() int {
	return v.config.Validation.DescriptionMaxLength
}

func (v *Validator) passwordMinLength() int {
	return v.config.Validation.PasswordMinLength
}
