package security

import "testing"

func TestNewCSRFTokenUnique(t *testing.T) {
	a, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("NewCSRFToken returned error: %v", err)
	}
	b, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("NewCSRFToken returned error: %v", err)
	}

	if a == "" || b == "" {
		t.Fatal("NewCSRFToken returned empty token")
	}
	if a == b {
		t.Fatal("two generated tokens are identical")
	}
}

func TestVerifyCSRFToken(t *testing.T) {
	token, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("NewCSRFToken returned error: %v", err)
	}

	if !VerifyCSRFToken(token, token) {
		t.Fatal("matching token rejected")
	}
	if VerifyCSRFToken(token, token+"x") {
		t.Fatal("mismatched token accepted")
	}
	if VerifyCSRFToken(token, "") {
		t.Fatal("empty submission accepted")
	}
	if VerifyCSRFToken("", "") {
		t.Fatal("empty expected token accepted")
	}
}
