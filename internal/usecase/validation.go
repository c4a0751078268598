package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxDataSize bounds the plaintext a user may store.
const MaxDataSize = 10 * 1024

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	// dangerousPatterns are rejected anywhere in stored data, case-insensitive.
	// The stored blob is rendered back to its owner, so active content is
	// refused at the door rather than sanitized on the way out.
	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*script`),
		regexp.MustCompile(`(?i)<\s*iframe`),
		regexp.MustCompile(`(?i)<\s*object`),
		regexp.MustCompile(`(?i)<\s*embed`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	}
)

// FieldError reports a validation failure tied to a specific input field.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername trims surrounding whitespace and enforces the username
// format: 3-50 characters from [a-zA-Z0-9_], not starting with an underscore.
// The trimmed username is returned; callers must use it for storage and
// lookup so accidental padding never creates a distinct identity.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return "", &FieldError{Field: "username", Message: "username must be between 3 and 50 characters"}
	}
	if !usernamePattern.MatchString(username) {
		return "", &FieldError{Field: "username", Message: "username may only contain letters, digits and underscores"}
	}
	if strings.HasPrefix(username, "_") {
		return "", &FieldError{Field: "username", Message: "username must not start with an underscore"}
	}
	return username, nil
}

// ValidateData trims surrounding whitespace, bounds the size of a user blob
// and rejects content with embedded active markup. The trimmed data is
// returned for storage; whitespace-only input counts as empty.
func ValidateData(data string) (string, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", &FieldError{Field: "data", Message: "data must not be empty"}
	}
	if len(data) > MaxDataSize {
		return "", &FieldError{Field: "data", Message: "data exceeds the 10KB limit"}
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(data) {
			return "", &FieldError{Field: "data", Message: "data contains disallowed content"}
		}
	}
	return data, nil
}
