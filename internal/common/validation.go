package common

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns a combined error wrapping ErrInvalidInput.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError("VALIDATION_ERROR", v.ErrorMessage(), ErrInvalidInput)
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case []byte:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Value: nil, Message: "is required"}
		}
	}
	return nil
}

// AllowedExtension accepts a filename whose extension is in constants.AllowedExtensions.
func AllowedExtension(fieldName string, value interface{}) *ValidationError {
	name, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	ext := filepath.Ext(name)
	if !constants.IsAllowedExt(ext) {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("unsupported file type %q, only PDF is accepted", ext),
		}
	}
	return nil
}

// MaxSize rejects sizes (int, int64 or []byte length) above limit bytes.
func MaxSize(limit int64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		var n int64
		switch v := value.(type) {
		case int:
			n = int64(v)
		case int64:
			n = v
		case []byte:
			n = int64(len(v))
		default:
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a size"}
		}
		if n > limit {
			msg := fmt.Sprintf("exceeds maximum size of %d MB", limit/(1024*1024))
			if limit < 1024*1024 {
				msg = fmt.Sprintf("exceeds maximum size of %d bytes", limit)
			}
			return &ValidationError{Field: fieldName, Value: n, Message: msg}
		}
		return nil
	}
}

// ValidateAndReturnError validates and returns InvalidArgumentError if validation fails
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return InvalidArgumentError(validator.ErrorMessage())
	}
	return nil
}

// IsInvalidInput reports whether err came from request validation.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
