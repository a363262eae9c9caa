package validation

import (
	"testing"
)

func TestRequiredValidator(t *testing.T) {
	v := Required("")

	// Empty values should fail
	if err := v.Validate(""); err == nil {
		t.Error("Expected error for empty string")
	}
	if err := v.Validate("   "); err == nil {
		t.Error("Expected error for whitespace-only string")
	}
	if err := v.Validate(nil); err == nil {
		t.Error("Expected error for nil")
	}

	if err := v.Validate("hello"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	custom := Required("E-mail is required.")
	if err := custom.Validate(""); err == nil || err.Error() != "E-mail is required." {
		t.Errorf("Expected custom message, got: %v", err)
	}
}

func TestMinLengthValidator(t *testing.T) {
	v := MinLength(6, "At least 6 digits")

	if err := v.Validate("12345"); err == nil {
		t.Error("Expected error for 5 characters")
	}
	if err := v.Validate("123456"); err != nil {
		t.Errorf("Expected no error for 6 characters, got: %v", err)
	}
	// Empty strings pass, Required handles them
	if err := v.Validate(""); err != nil {
		t.Errorf("Expected no error for empty string, got: %v", err)
	}
	// Characters, not bytes
	if err := MinLength(3, "").Validate("äöü"); err != nil {
		t.Errorf("Expected multibyte string to pass, got: %v", err)
	}
}

func TestMaxLengthValidator(t *testing.T) {
	v := MaxLength(5, "")

	if err := v.Validate("abcdef"); err == nil {
		t.Error("Expected error for 6 characters")
	}
	if err := v.Validate("abcde"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestPatternValidator(t *testing.T) {
	v := Pattern(`^[0-9]+$`, "digits only")

	if err := v.Validate("12a"); err == nil {
		t.Error("Expected error for non-digits")
	}
	if err := v.Validate("123"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if err := v.Validate(""); err != nil {
		t.Errorf("Expected no error for empty string, got: %v", err)
	}
}

func TestEmailValidator(t *testing.T) {
	v := Email("")

	valid := []string{"user@example.com", "first.last+tag@sub.example.co", "a_b@x.io"}
	for _, s := range valid {
		if err := v.Validate(s); err != nil {
			t.Errorf("Email(%q) error = %v, want nil", s, err)
		}
	}

	invalid := []string{"plainaddress", "@example.com", "user@", "user@example", "user example@x.com"}
	for _, s := range invalid {
		if err := v.Validate(s); err == nil {
			t.Errorf("Email(%q) expected error", s)
		}
	}

	if err := v.Validate(""); err != nil {
		t.Errorf("Expected no error for empty string, got: %v", err)
	}
}

func TestEqualToValidator(t *testing.T) {
	v := EqualTo("password", "Confirmation incorrect")
	form := Values{"password": "secret1"}

	if err := v.ValidateForm("secret1", form); err != nil {
		t.Errorf("Expected match to pass, got: %v", err)
	}
	if err := v.ValidateForm("secret2", form); err == nil || err.Error() != "Confirmation incorrect" {
		t.Errorf("Expected mismatch error, got: %v", err)
	}
	if err := v.ValidateForm("", form); err != nil {
		t.Errorf("Expected empty confirmation to pass, got: %v", err)
	}
	if err := v.ValidateForm("x", Values{}); err == nil {
		t.Error("Expected error when the other field is missing")
	}
}

func TestWhenValidator(t *testing.T) {
	w := When("old_password", Present,
		Required("Required field"),
		MinLength(6, "Too short"),
	)

	if errs := w.Errors("", Values{}); len(errs) != 0 {
		t.Errorf("Expected no errors when condition is false, got %v", errs)
	}

	errs := w.Errors("abc", Values{"old_password": "current"})
	if len(errs) != 1 || errs[0].Error() != "Too short" {
		t.Errorf("Errors() = %v, want [Too short]", errs)
	}

	if err := w.ValidateForm("", Values{"old_password": "current"}); err == nil || err.Error() != "Required field" {
		t.Errorf("ValidateForm() = %v, want Required field", err)
	}
}

func TestCustomValidator(t *testing.T) {
	v := Custom(func(value any) error {
		if toString(value) == "admin" {
			return FieldError{Message: "reserved"}
		}
		return nil
	})

	if err := v.Validate("admin"); err == nil {
		t.Error("Expected error for reserved value")
	}
	if err := v.Validate("bob"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}
