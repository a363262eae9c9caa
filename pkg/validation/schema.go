package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Values is a submitted form keyed by field name.
type Values map[string]string

// Get implements Form.
func (v Values) Get(field string) any {
	if s, ok := v[field]; ok {
		return s
	}
	return nil
}

// String returns the raw value of field, or "" if absent.
func (v Values) String(field string) string {
	return v[field]
}

// Issue is one failed rule: the field path and the message to show.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is returned by Schema.Validate. Issues are in the order the rules
// were evaluated, so a path may appear more than once.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	switch len(e.Issues) {
	case 0:
		return "validation failed"
	case 1:
		return e.Issues[0].Message
	default:
		return fmt.Sprintf("%d errors occurred", len(e.Issues))
	}
}

// Messages returns every issue message in order.
func (e *Error) Messages() []string {
	out := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		out[i] = iss.Message
	}
	return out
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// FieldRules binds validators to one field.
type FieldRules struct {
	Name       string
	Validators []Validator
}

// Field declares the rules for name. Rules run in the given order.
func Field(name string, validators ...Validator) FieldRules {
	return FieldRules{Name: name, Validators: validators}
}

// Schema is an ordered set of field rules.
type Schema struct {
	fields []FieldRules
}

// Object builds a schema from field rules.
//
//	schema := validation.Object(
//	    validation.Field("email",
//	        validation.Required("E-mail is required."),
//	        validation.Email("Enter a valid e-mail address."),
//	    ),
//	    validation.Field("password", validation.Required("Password is required.")),
//	)
func Object(fields ...FieldRules) *Schema {
	return &Schema{fields: fields}
}

// Fields returns the declared field names in order.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Validate runs every rule of every field without stopping at the first
// failure and returns a *Error listing all issues, or nil.
func (s *Schema) Validate(form Form) error {
	var issues []Issue
	for _, f := range s.fields {
		value := form.Get(f.Name)
		for _, v := range f.Validators {
			for _, err := range collect(v, value, form) {
				issues = append(issues, Issue{Path: pathOf(err, f.Name), Message: err.Error()})
			}
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &Error{Issues: issues}
}

// collect runs v and returns all errors it reports.
func collect(v Validator, value any, form Form) []error {
	if w, ok := v.(*WhenField); ok {
		return w.Errors(value, form)
	}
	if err := run(v, value, form); err != nil {
		return []error{err}
	}
	return nil
}

func pathOf(err error, field string) string {
	var fe FieldError
	if errors.As(err, &fe) && strings.TrimSpace(fe.Field) != "" {
		return fe.Field
	}
	return field
}
