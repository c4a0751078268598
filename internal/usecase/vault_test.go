package usecase

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
)

func newVaultFixture(t *testing.T) (*VaultService, *stubDataRepo, *recordingPublisher) {
	t.Helper()

	key := make([]byte, security.KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cipher, err := security.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	data := newStubDataRepo()
	audit := &recordingPublisher{}
	return NewVaultService(data, cipher, audit, testLogger()), data, audit
}

func TestVaultSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	svc, data, audit := newVaultFixture(t)

	plaintext := "the notes I keep to myself"
	if err := svc.Save(ctx, "alice", plaintext); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := data.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if bytes.Contains(record.Payload, []byte(plaintext)) {
		t.Fatal("stored payload contains the plaintext")
	}

	loaded, err := svc.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != plaintext {
		t.Fatalf("Load = %q, want %q", loaded, plaintext)
	}

	if len(audit.saves) != 1 || audit.saves[0].PayloadLen != len(plaintext) {
		t.Fatalf("data saved event not published: %+v", audit.saves)
	}
}

func TestVaultSaveTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newVaultFixture(t)

	if err := svc.Save(ctx, "alice", "  my note  \n"); err != nil {
		t.Fatalf("Save with padded data: %v", err)
	}
	loaded, err := svc.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != "my note" {
		t.Fatalf("Load = %q, want trimmed %q", loaded, "my note")
	}

	// Whitespace-only input is empty once trimmed and must not be stored.
	err = svc.Save(ctx, "bob", "   \n\t")
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "data" {
		t.Fatalf("Save whitespace-only error = %v, want data field error", err)
	}
	if _, err := svc.Load(ctx, "bob"); !errors.Is(err, ErrNoData) {
		t.Fatalf("whitespace-only data was stored: %v", err)
	}
}

func TestVaultSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newVaultFixture(t)

	if err := svc.Save(ctx, "alice", "first version"); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := svc.Save(ctx, "alice", "second version"); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := svc.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != "second version" {
		t.Fatalf("Load = %q, want the later save", loaded)
	}
}

func TestVaultUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newVaultFixture(t)

	if err := svc.Save(ctx, "alice", "alice data"); err != nil {
		t.Fatalf("Save alice: %v", err)
	}
	if err := svc.Save(ctx, "bob", "bob data"); err != nil {
		t.Fatalf("Save bob: %v", err)
	}

	aliceData, err := svc.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load alice: %v", err)
	}
	bobData, err := svc.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("Load bob: %v", err)
	}
	if aliceData != "alice data" || bobData != "bob data" {
		t.Fatalf("cross-user data leak: alice=%q bob=%q", aliceData, bobData)
	}
}

func TestVaultLoadNoData(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newVaultFixture(t)

	if _, err := svc.Load(ctx, "alice"); !errors.Is(err, ErrNoData) {
		t.Fatalf("Load error = %v, want ErrNoData", err)
	}
}

func TestVaultSaveRejectsInvalidData(t *testing.T) {
	ctx := context.Background()
	svc, data, _ := newVaultFixture(t)

	cases := []string{
		"",
		strings.Repeat("x", MaxDataSize+1),
		"<script>alert(1)</script>",
	}
	for _, input := range cases {
		if err := svc.Save(ctx, "alice", input); err == nil {
			t.Errorf("Save accepted invalid data of length %d", len(input))
		}
	}
	if _, err := data.Get(ctx, "alice"); err == nil {
		t.Fatal("invalid data reached the repository")
	}
}

func TestVaultLoadCorruptRecord(t *testing.T) {
	ctx := context.Background()
	svc, data, _ := newVaultFixture(t)

	if err := svc.Save(ctx, "alice", "intact"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := data.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	corrupted := append([]byte(nil), record.Payload...)
	corrupted[len(corrupted)-1] ^= 0xFF
	if err := data.Upsert(ctx, "alice", corrupted); err != nil {
		t.Fatalf("Upsert corrupted: %v", err)
	}

	_, err = svc.Load(ctx, "alice")
	if !errors.Is(err, security.ErrDecryptFailed) {
		t.Fatalf("Load error = %v, want ErrDecryptFailed", err)
	}
}
