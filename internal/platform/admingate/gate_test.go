package admingate

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	key := make([]byte, 32)
	copy(key, "0123456789abcdef0123456789abcdef")
	gate, err := New("123456", key, []byte("test-session-secret"), time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gate
}

func TestNewRejectsBadKeySizes(t *testing.T) {
	if _, err := New("123456", make([]byte, 16), []byte("s"), time.Hour); err == nil {
		t.Error("expected error for 16-byte encryption key")
	}
	if _, err := New("", make([]byte, 32), []byte("s"), time.Hour); err == nil {
		t.Error("expected error for empty passkey")
	}
	if _, err := New("123456", make([]byte, 32), nil, time.Hour); err == nil {
		t.Error("expected error for empty session secret")
	}
}

func TestVerify(t *testing.T) {
	gate := newTestGate(t)

	if err := gate.Verify("123456"); err != nil {
		t.Errorf("correct passkey rejected: %v", err)
	}
	if err := gate.Verify("654321"); !errors.Is(err, ErrInvalidPasskey) {
		t.Errorf("wrong passkey: got %v, want ErrInvalidPasskey", err)
	}
	if err := gate.Verify(""); !errors.Is(err, ErrInvalidPasskey) {
		t.Errorf("empty passkey: got %v, want ErrInvalidPasskey", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	gate := newTestGate(t)

	encrypted, err := gate.EncryptKey()
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}
	if encrypted == "123456" {
		t.Fatal("encrypted value must not equal the plaintext passkey")
	}

	if err := gate.VerifyEncrypted(encrypted); err != nil {
		t.Errorf("VerifyEncrypted: %v", err)
	}
}

func TestEncryptKeyNonceVaries(t *testing.T) {
	gate := newTestGate(t)

	a, err := gate.EncryptKey()
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}
	b, err := gate.EncryptKey()
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}
	if a == b {
		t.Error("two encryptions produced identical ciphertext")
	}
}

func TestDecryptKeyRejectsTampering(t *testing.T) {
	gate := newTestGate(t)

	encrypted, err := gate.EncryptKey()
	if err != nil {
		t.Fatalf("EncryptKey: %v", err)
	}

	tampered := strings.Replace(encrypted, string(encrypted[4]), "x", 1)
	if _, err := gate.DecryptKey(tampered); !errors.Is(err, ErrInvalidPasskey) {
		t.Errorf("tampered ciphertext: got %v, want ErrInvalidPasskey", err)
	}

	if _, err := gate.DecryptKey("not base64 at all!!!"); !errors.Is(err, ErrInvalidPasskey) {
		t.Errorf("garbage input: got %v, want ErrInvalidPasskey", err)
	}

	if _, err := gate.DecryptKey("YQ=="); !errors.Is(err, ErrInvalidPasskey) {
		t.Errorf("truncated input: got %v, want ErrInvalidPasskey", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	gate := newTestGate(t)

	token, err := gate.IssueSession(time.Now())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if err := gate.CheckSession(token); err != nil {
		t.Errorf("fresh session rejected: %v", err)
	}
}

func TestCheckSessionRejectsExpired(t *testing.T) {
	gate := newTestGate(t)

	token, err := gate.IssueSession(time.Now().Add(-2 * time.Hour))
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if err := gate.CheckSession(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired session: got %v, want ErrInvalidSession", err)
	}
}

func TestCheckSessionRejectsWrongSecret(t *testing.T) {
	gate := newTestGate(t)

	other, err := New("123456", make([]byte, 32), []byte("different-secret"), time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	token, err := other.IssueSession(time.Now())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if err := gate.CheckSession(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("foreign token: got %v, want ErrInvalidSession", err)
	}
}

func TestCheckSessionRejectsGarbage(t *testing.T) {
	gate := newTestGate(t)
	if err := gate.CheckSession("not.a.token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("garbage token: got %v, want ErrInvalidSession", err)
	}
}
