package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// structValidator checks the validate struct tags.
var structValidator = validator.New()

// Validator collects configuration errors rather than stopping at the first.
type Validator struct {
	errors []error
	name   string
}

// NewValidator creates a validator whose messages are prefixed by name.
func NewValidator(name string) *Validator {
	return &Validator{name: name}
}

// Required checks that a string field is not empty.
func (v *Validator) Required(field, value string) *Validator {
	if value == "" {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: required field is empty", v.name, field))
	}
	return v
}

// RangeInt checks that an int field lies in [min, max].
func (v *Validator) RangeInt(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %d is outside range [%d, %d]", v.name, field, value, min, max))
	}
	return v
}

// OneOf checks that a string field is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Errorf("%s.%s: value %q must be one of %v", v.name, field, value, allowed))
	return v
}

// Custom records the error returned by fn, if any.
func (v *Validator) Custom(field string, fn func() error) *Validator {
	if err := fn(); err != nil {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: %w", v.name, field, err))
	}
	return v
}

// Struct runs the struct-tag rules over s.
func (v *Validator) Struct(s any) *Validator {
	err := structValidator.Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.errors = append(v.errors, fmt.Errorf("%s: %w", v.name, err))
		return v
	}
	for _, e := range verrs {
		v.errors = append(v.errors, fmt.Errorf("%s.%s", v.name, describe(e)))
	}
	return v
}

// When applies validations only if condition holds.
func (v *Validator) When(condition bool, validations func(*Validator)) *Validator {
	if condition {
		validations(v)
	}
	return v
}

// Errors returns every collected error.
func (v *Validator) Errors() []error {
	return v.errors
}

// Validate returns nil, the single error, or all errors joined.
func (v *Validator) Validate() error {
	switch len(v.errors) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%w: %w", ErrInvalid, v.errors[0])
	default:
		return fmt.Errorf("%w: %d errors: %w", ErrInvalid, len(v.errors), errors.Join(v.errors...))
	}
}

// describe renders one struct-tag failure.
func describe(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, e.Param())
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
}
