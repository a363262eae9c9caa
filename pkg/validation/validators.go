package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator checks a single field value.
type Validator interface {
	// Validate returns nil if value is valid, or an error carrying the
	// message to show next to the field.
	Validate(value any) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value any) error

func (f ValidatorFunc) Validate(value any) error {
	return f(value)
}

// FormValidator is a Validator that needs the other values of the form,
// such as a confirmation field or a rule that depends on another field.
type FormValidator interface {
	Validator
	ValidateForm(value any, form Form) error
}

// Form gives validators read access to the submitted values.
type Form interface {
	Get(field string) any
}

// FieldError is the failure of one validator.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// ----------------------------------------------------------------------------
// String Validators
// ----------------------------------------------------------------------------

// Required validates that the value is non-empty.
func Required(msg string) Validator {
	if msg == "" {
		msg = "This field is required"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return FieldError{Message: msg}
		}
		return nil
	})
}

// MinLength validates that a string has at least n characters.
// Empty values pass; combine with Required.
func MinLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if len([]rune(s)) < n {
			return FieldError{Message: msg}
		}
		return nil
	})
}

// MaxLength validates that a string has at most n characters.
func MaxLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		if len([]rune(toString(value))) > n {
			return FieldError{Message: msg}
		}
		return nil
	})
}

// Pattern validates that a string matches the given regular expression.
func Pattern(pattern string, msg string) Validator {
	re := regexp.MustCompile(pattern)
	if msg == "" {
		msg = "Invalid format"
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return FieldError{Message: msg}
		}
		return nil
	})
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validates that the value looks like an email address.
// Empty values pass; combine with Required.
func Email(msg string) Validator {
	if msg == "" {
		msg = "Invalid email address"
	}
	return ValidatorFunc(func(value any) error {
		s := strings.TrimSpace(toString(value))
		if s == "" {
			return nil
		}
		if !emailPattern.MatchString(s) {
			return FieldError{Message: msg}
		}
		return nil
	})
}

// Custom creates a validator from a function.
func Custom(fn func(value any) error) Validator {
	return ValidatorFunc(fn)
}

// ----------------------------------------------------------------------------
// Cross-field Validators
// ----------------------------------------------------------------------------

// EqualToField checks that the value equals another field of the form.
// An empty value is accepted, so an untouched confirmation field is
// reported by Required rather than as a mismatch.
type EqualToField struct {
	Field   string
	Message string
}

// EqualTo returns a validator comparing against field.
func EqualTo(field string, msg string) *EqualToField {
	if msg == "" {
		msg = fmt.Sprintf("Must match %s", field)
	}
	return &EqualToField{Field: field, Message: msg}
}

// Validate cannot compare without the form and always passes.
func (e *EqualToField) Validate(value any) error {
	return nil
}

func (e *EqualToField) ValidateForm(value any, form Form) error {
	if toString(value) == "" {
		return nil
	}
	if !equals(value, form.Get(e.Field)) {
		return FieldError{Message: e.Message}
	}
	return nil
}

// Condition decides whether conditional validators apply, given the value
// of the field they depend on.
type Condition func(value any) bool

// Present is a Condition that holds when the value is non-empty.
func Present(value any) bool {
	return !isEmpty(value)
}

// WhenField applies its validators only when Condition holds for the value
// of another field.
type WhenField struct {
	Field      string
	Condition  Condition
	Validators []Validator
}

// When returns validators that run only if cond(form.Get(field)) is true.
//
//	validation.Field("password",
//	    validation.When("old_password", validation.Present,
//	        validation.Required("Password is required."),
//	    ),
//	)
func When(field string, cond Condition, validators ...Validator) *WhenField {
	return &WhenField{Field: field, Condition: cond, Validators: validators}
}

// Validate cannot evaluate the condition without the form and always passes.
func (w *WhenField) Validate(value any) error {
	return nil
}

// ValidateForm returns the first failure among the wrapped validators.
// Use Errors to collect all of them.
func (w *WhenField) ValidateForm(value any, form Form) error {
	if errs := w.Errors(value, form); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Errors runs every wrapped validator when the condition holds.
func (w *WhenField) Errors(value any, form Form) []error {
	if w.Condition == nil || !w.Condition(form.Get(w.Field)) {
		return nil
	}
	var errs []error
	for _, v := range w.Validators {
		if err := run(v, value, form); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// run applies v with form access when v supports it.
func run(v Validator, value any, form Form) error {
	if fv, ok := v.(FormValidator); ok {
		return fv.ValidateForm(value, form)
	}
	return v.Validate(value)
}

// ----------------------------------------------------------------------------
// Helper Functions
// ----------------------------------------------------------------------------

// isEmpty checks if a value is considered empty.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return len(v) == 0
	default:
		return false
	}
}

// toString converts a value to a string.
func toString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// equals checks if two values are equal.
func equals(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return toString(a) == toString(b)
}
