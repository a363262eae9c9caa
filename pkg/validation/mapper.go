package validation

// FieldErrorMap maps a field path to the message displayed next to it.
type FieldErrorMap map[string]string

// MapIssues flattens issues into one message per path. When a path occurs
// more than once the last occurrence wins. An empty input yields an empty,
// non-nil map.
func MapIssues(issues []Issue) FieldErrorMap {
	out := make(FieldErrorMap, len(issues))
	for _, iss := range issues {
		out[iss.Path] = iss.Message
	}
	return out
}

// FieldErrors maps err to field messages if it is a validation error.
// Any other error returns false, so callers can fall back to a toast.
func FieldErrors(err error) (FieldErrorMap, bool) {
	ve, ok := AsError(err)
	if !ok {
		return nil, false
	}
	return MapIssues(ve.Issues), true
}

// Has reports whether field has a message.
func (m FieldErrorMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}
