package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	keyfileMaxAttempts = 3
	keyfileRetryDelay  = 100 * time.Millisecond
)

// ErrKeyfileInsecure indicates the key file is readable by other accounts.
// This is never retried or repaired automatically; the operator must fix the
// permissions or remove the file.
var ErrKeyfileInsecure = errors.New("security: key file is readable by other users")

// keyfileSentinel is the fixed payload round-tripped through a candidate key
// to prove the file holds usable key material.
var keyfileSentinel = "appsegura keyfile self-test"

// LoadKeyfile returns a Cipher backed by the key stored at path, creating the
// file when absent and regenerating it when its content fails the self-test.
// Transient I/O failures are retried a bounded number of times; the caller
// must treat a returned error as fatal and refuse to serve traffic.
func LoadKeyfile(path string) (*Cipher, error) {
	var lastErr error
	for attempt := 0; attempt < keyfileMaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(keyfileRetryDelay * time.Duration(attempt))
		}

		cipher, err := acquireKeyfile(path)
		if err == nil {
			return cipher, nil
		}
		if errors.Is(err, ErrKeyfileInsecure) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("security: acquire key file %s: %w", path, lastErr)
}

func acquireKeyfile(path string) (*Cipher, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return createKeyfile(path)
	case err != nil:
		return nil, fmt.Errorf("stat key file: %w", err)
	}

	if err := checkKeyfileMode(info); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if cipher, err := selfTestedCipher(raw); err == nil {
		return cipher, nil
	}

	// Corrupted, truncated, or foreign content: drop the file and regenerate.
	// Records encrypted under the lost key become unreadable, but the service
	// stays able to encrypt new data.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove corrupt key file: %w", err)
	}

	return createKeyfile(path)
}

func createKeyfile(path string) (*Cipher, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create key directory: %w", err)
		}
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create key file: %w", err)
	}

	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("sync key file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close key file: %w", err)
	}

	// O_CREAT honors umask, so tighten explicitly after the write lands.
	if err := os.Chmod(path, 0o600); err != nil {
		return nil, fmt.Errorf("restrict key file permissions: %w", err)
	}

	return selfTestedCipher(key)
}

func checkKeyfileMode(info os.FileInfo) error {
	if runtime.GOOS == "windows" {
		// No POSIX permission bits to inspect.
		return nil
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("%w: %s has mode %04o", ErrKeyfileInsecure, info.Name(), perm)
	}
	return nil
}

// selfTestedCipher builds a Cipher and proves it with an encrypt/decrypt
// round trip before handing it to callers.
func selfTestedCipher(key []byte) (*Cipher, error) {
	cipher, err := NewCipher(key)
	if err != nil {
		return nil, err
	}

	sealed, err := cipher.Encrypt(keyfileSentinel)
	if err != nil {
		return nil, fmt.Errorf("key self-test encrypt: %w", err)
	}

	plain, err := cipher.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("key self-test decrypt: %w", err)
	}
	if plain != keyfileSentinel {
		return nil, errors.New("security: key self-test round trip mismatch")
	}

	return cipher, nil
}
