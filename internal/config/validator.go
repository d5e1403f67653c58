package config

import (
	"fmt"
	"strings"
)

// Validator accumulates configuration errors, mirroring config.Validator
// in the teacher's config/config.go.
type Validator struct {
	errors []string
}

// NewValidator builds an empty Validator.
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) fail(msg string) {
	v.errors = append(v.errors, msg)
}

// RequireString fails if value is empty.
func (v *Validator) RequireString(field, value string) {
	if value == "" {
		v.fail(fmt.Sprintf("%s is required", field))
	}
}

// RequirePositiveInt fails if value is not positive.
func (v *Validator) RequirePositiveInt(field string, value int) {
	if value <= 0 {
		v.fail(fmt.Sprintf("%s must be positive", field))
	}
}

// RequireURL fails if value is empty or lacks an http(s) scheme.
func (v *Validator) RequireURL(field, value string) {
	if value == "" {
		v.fail(fmt.Sprintf("%s is required", field))
		return
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		v.fail(fmt.Sprintf("%s must be a valid URL (http:// or https://)", field))
	}
}

// RequireOneOf fails if value isn't among allowed.
func (v *Validator) RequireOneOf(field, value string, allowed []string) {
	for _, option := range allowed {
		if value == option {
			return
		}
	}
	v.fail(fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}

// IsValid reports whether any errors were accumulated.
func (v *Validator) IsValid() bool { return len(v.errors) == 0 }

// ErrorString joins accumulated errors for display.
func (v *Validator) ErrorString() string { return strings.Join(v.errors, "; ") }

// Validate returns a single error summarizing all accumulated failures, or
// nil if none were recorded.
func (v *Validator) Validate() error {
	if v.IsValid() {
		return nil
	}
	return fmt.Errorf("configuration validation failed: %s", v.ErrorString())
}
