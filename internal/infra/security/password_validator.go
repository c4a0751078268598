package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPasswordValidator returns the registration password policy:
// 8-128 characters with at least one lowercase letter, one uppercase letter,
// and one digit, rejecting passwords zxcvbn scores as trivially guessable.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		MaxLengthRule(128),
		RequireLowercaseRule(),
		RequireUppercaseRule(),
		RequireDigitRule(),
		MinStrengthRule(1),
	)
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// MaxLengthRule bounds the password length.
func MaxLengthRule(max int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) > max {
			return &PasswordValidationError{
				Code:    "max_length",
				Message: fmt.Sprintf("password must be at most %d characters long", max),
			}
		}
		return nil
	})
}

// RequireLowercaseRule ensures at least one lowercase letter.
func RequireLowercaseRule() PasswordRule {
	return requireClassRule("lowercase", "password must contain a lowercase letter", unicode.IsLower)
}

// RequireUppercaseRule ensures at least one uppercase letter.
func RequireUppercaseRule() PasswordRule {
	return requireClassRule("uppercase", "password must contain an uppercase letter", unicode.IsUpper)
}

// RequireDigitRule ensures at least one digit.
func RequireDigitRule() PasswordRule {
	return requireClassRule("digit", "password must contain a digit", unicode.IsDigit)
}

func requireClassRule(code, message string, class func(rune) bool) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if class(r) {
				return nil
			}
		}
		return &PasswordValidationError{Code: code, Message: message}
	})
}

// MinStrengthRule rejects passwords whose zxcvbn score (0-4) falls below min.
func MinStrengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		score := zxcvbn.PasswordStrength(password, nil).Score
		if score < min {
			return &PasswordValidationError{
				Code:    "strength",
				Message: "password is too easy to guess",
			}
		}
		return nil
	})
}
