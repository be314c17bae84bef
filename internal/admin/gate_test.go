package admin

import (
	"errors"
	"testing"
)

func TestVerifyCorrectPasskey(t *testing.T) {
	gate := NewGate("123456")

	token, err := gate.Verify("123456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	// The issued token keeps working on later checks, so a returning admin
	// skips the prompt.
	if !gate.Check(token) {
		t.Error("issued token should pass Check")
	}
	if !gate.Check(token) {
		t.Error("token should remain valid across repeated checks")
	}
}

func TestVerifyWrongPasskey(t *testing.T) {
	gate := NewGate("123456")

	token, err := gate.Verify("654321")
	if !errors.Is(err, ErrInvalidPasskey) {
		t.Fatalf("expected ErrInvalidPasskey, got %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token on failure, got %q", token)
	}
}

func TestCheckRejectsCorruptedToken(t *testing.T) {
	gate := NewGate("123456")

	if gate.Check("not base64!!!") {
		t.Error("corrupted token should not pass Check")
	}
	if gate.Check("") {
		t.Error("empty token should not pass Check")
	}
	if gate.Check(EncryptKey("000000")) {
		t.Error("token for a different passkey should not pass Check")
	}
}

func TestRotatedPasskeyInvalidatesToken(t *testing.T) {
	token, err := NewGate("123456").Verify("123456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	rotated := NewGate("999999")
	if rotated.Check(token) {
		t.Error("token issued before rotation should no longer pass")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := DecryptKey(EncryptKey("123456"))
	if err != nil {
		t.Fatalf("DecryptKey: %v", err)
	}
	if key != "123456" {
		t.Errorf("round trip = %q, want %q", key, "123456")
	}
}
