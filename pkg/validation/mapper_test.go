package validation_test

import (
	"errors"
	"testing"

	"github.com/gobarber/web/pkg/validation"
	"github.com/google/go-cmp/cmp"
)

func TestMapIssues(t *testing.T) {
	tests := []struct {
		name   string
		issues []validation.Issue
		want   validation.FieldErrorMap
	}{
		{
			name: "one per field",
			issues: []validation.Issue{
				{Path: "email", Message: "E-mail is required"},
				{Path: "password", Message: "Password is required"},
			},
			want: validation.FieldErrorMap{
				"email":    "E-mail is required",
				"password": "Password is required",
			},
		},
		{
			name: "last occurrence wins",
			issues: []validation.Issue{
				{Path: "email", Message: "required"},
				{Path: "email", Message: "invalid format"},
			},
			want: validation.FieldErrorMap{"email": "invalid format"},
		},
		{
			name: "interleaved duplicates",
			issues: []validation.Issue{
				{Path: "a", Message: "1"},
				{Path: "b", Message: "2"},
				{Path: "a", Message: "3"},
			},
			want: validation.FieldErrorMap{"a": "3", "b": "2"},
		},
		{
			name:   "empty",
			issues: nil,
			want:   validation.FieldErrorMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validation.MapIssues(tt.issues)
			if got == nil {
				t.Fatal("MapIssues returned nil map")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MapIssues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	if _, ok := validation.FieldErrors(errors.New("network down")); ok {
		t.Error("FieldErrors accepted a non-validation error")
	}
	if _, ok := validation.FieldErrors(nil); ok {
		t.Error("FieldErrors accepted nil")
	}

	err := &validation.Error{Issues: []validation.Issue{{Path: "email", Message: "bad"}}}
	fields, ok := validation.FieldErrors(err)
	if !ok {
		t.Fatal("FieldErrors rejected a validation error")
	}
	if !fields.Has("email") || fields.Has("password") {
		t.Errorf("fields = %v", fields)
	}
}
