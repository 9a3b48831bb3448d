package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestLoginAndVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	m := NewManager("test-secret", time.Minute, string(hash))

	token, err := m.Login("hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	m := NewManager("test-secret", time.Minute, string(hash))
	if _, err := m.Login("wrong"); err != ErrBadCredentials {
		t.Fatalf("got %v, want ErrBadCredentials", err)
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	issuer := NewManager("secret-a", time.Minute, string(hash))
	checker := NewManager("secret-b", time.Minute, string(hash))

	token, err := issuer.Login("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if err := checker.Verify(token); err != ErrBadToken {
		t.Fatalf("got %v, want ErrBadToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	m := NewManager("test-secret", -time.Minute, string(hash))
	token, err := m.Login("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Verify(token); err != ErrBadToken {
		t.Fatalf("got %v, want ErrBadToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Minute, "")
	if err := m.Verify("not-a-token"); err != ErrBadToken {
		t.Fatalf("got %v, want ErrBadToken", err)
	}
}
