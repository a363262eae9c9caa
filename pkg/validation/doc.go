// Package validation checks submitted form values and turns the failures
// into per-field messages.
//
// A Schema is built from fields and their validators. Validate evaluates
// every rule and returns a *Error carrying all issues in evaluation order:
//
//	err := schema.Validate(validation.Values{"email": "x"})
//	if fields, ok := validation.FieldErrors(err); ok {
//	    // fields["email"] holds the message to render next to the input
//	}
//
// MapIssues keeps one message per field; the last issue reported for a
// path is the one shown.
package validation
