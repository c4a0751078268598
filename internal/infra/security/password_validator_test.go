package security

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultPasswordValidatorAccepts(t *testing.T) {
	v := DefaultPasswordValidator()

	for _, password := range []string{
		"Str0ngHorse7",
		"c0rrect-Horse-battery",
		"Migración2024segura",
	} {
		if err := v.Validate(password); err != nil {
			t.Fatalf("valid password %q rejected: %v", password, err)
		}
	}
}

func TestDefaultPasswordValidatorRejects(t *testing.T) {
	v := DefaultPasswordValidator()

	cases := map[string]string{
		"Ab1":                          "min_length",
		strings.Repeat("Ab1", 50):      "max_length",
		"ALLUPPER123":                  "lowercase",
		"alllower123":                  "uppercase",
		"NoDigitsHere":                 "digit",
	}

	for password, wantCode := range cases {
		err := v.Validate(password)
		if err == nil {
			t.Fatalf("password %q accepted", password)
		}

		var verr *PasswordValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("unexpected error type for %q: %v", password, err)
		}
		if verr.Code != wantCode {
			t.Fatalf("password %q: got code %s, want %s", password, verr.Code, wantCode)
		}
	}
}

func TestMinStrengthRule(t *testing.T) {
	rule := MinStrengthRule(2)

	if err := rule.Validate("password"); err == nil {
		t.Fatal("dictionary password passed strength rule")
	}
	if err := rule.Validate("vM9#kq2!Lr8z"); err != nil {
		t.Fatalf("high-entropy password failed strength rule: %v", err)
	}
}
