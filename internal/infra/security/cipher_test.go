package security

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher returned error: %v", err)
	}

	inputs := []string{
		"",
		"hello",
		"multi\nline\ninput with unicode: ñandú 日本語",
		strings.Repeat("x", 10*1024),
	}

	for _, in := range inputs {
		sealed, err := c.Encrypt(in)
		if err != nil {
			t.Fatalf("Encrypt(%d bytes) returned error: %v", len(in), err)
		}

		out, err := c.Decrypt(sealed)
		if err != nil {
			t.Fatalf("Decrypt returned error: %v", err)
		}
		if out != in {
			t.Fatalf("round trip mismatch for %d byte input", len(in))
		}
	}
}

func TestCipherNonceRandomized(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher returned error: %v", err)
	}

	a, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	b, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same plaintext produced identical blobs")
	}
}

func TestCipherTamperDetection(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher returned error: %v", err)
	}

	sealed, err := c.Encrypt("integrity protected payload")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	for i := range sealed {
		mutated := append([]byte(nil), sealed...)
		mutated[i] ^= 0x01

		if out, err := c.Decrypt(mutated); err == nil {
			t.Fatalf("flipping byte %d went undetected, got %q", i, out)
		} else if !errors.Is(err, ErrDecryptFailed) {
			t.Fatalf("unexpected error for byte %d: %v", i, err)
		}
	}
}

func TestCipherTruncation(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher returned error: %v", err)
	}

	sealed, err := c.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	for _, n := range []int{0, 1, len(sealed) / 2, len(sealed) - 1} {
		if _, err := c.Decrypt(sealed[:n]); !errors.Is(err, ErrDecryptFailed) {
			t.Fatalf("truncation to %d bytes not rejected: %v", n, err)
		}
	}
}

func TestCipherWrongKey(t *testing.T) {
	c1, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher returned error: %v", err)
	}
	c2, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher returned error: %v", err)
	}

	sealed, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	if _, err := c2.Decrypt(sealed); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("decryption under a different key not rejected: %v", err)
	}
}

func TestNewCipherRejectsBadKeySize(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		if _, err := NewCipher(make([]byte, n)); !errors.Is(err, ErrInvalidKeySize) {
			t.Fatalf("key of %d bytes accepted: %v", n, err)
		}
	}
}
