package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/edlflash/errors"
)

// Validator collects field errors of checks that struct tags cannot express.
type Validator struct {
	errors []FieldError
}

// FieldError is one offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded field errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns nil, or one INVALID_INPUT AppError listing every field
// error.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return fieldsError(v.errors)
}

// Command checks a command vector: at least one element, a non-blank
// executable, and no NUL bytes, which no OS accepts in an argument.
func (v *Validator) Command(field string, argv []string) *Validator {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		v.AddError(field, "must not be empty")
		return v
	}
	for i, arg := range argv {
		if strings.IndexByte(arg, 0) >= 0 {
			v.AddError(fmt.Sprintf("%s[%d]", field, i), "must not contain NUL bytes")
		}
	}
	return v
}

// Dir checks that dir, when set, is an existing directory.
func (v *Validator) Dir(field, dir string) *Validator {
	if dir == "" {
		return v
	}
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		v.AddError(field, "must be an existing directory")
	case !info.IsDir():
		v.AddError(field, "must be a directory")
	}
	return v
}

// Custom records message for field unless condition holds.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

func fieldsError(fields []FieldError) *errors.AppError {
	messages := make([]string, len(fields))
	for i, e := range fields {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}
