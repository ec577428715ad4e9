package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("rahasia-kuat-123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "rahasia-kuat-123" {
		t.Fatal("password stored in plain text")
	}

	if err := VerifyPassword(hash, "rahasia-kuat-123"); err != nil {
		t.Errorf("VerifyPassword rejected the correct password: %v", err)
	}
	if err := VerifyPassword(hash, "salah"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("got %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	if _, err := HashPassword("pendek"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("got %v, want ErrPasswordTooShort", err)
	}
}

func TestIsPasswordValid(t *testing.T) {
	if IsPasswordValid("1234567") {
		t.Error("7-character password accepted")
	}
	if !IsPasswordValid("12345678") {
		t.Error("8-character password rejected")
	}
}

func TestSessionRoles(t *testing.T) {
	coordinator := Session{Role: "coordinator"}
	student := Session{Role: "student"}
	admin := Session{Role: "admin"}

	if !coordinator.CanReview() || !admin.CanReview() {
		t.Error("coordinator and admin must be able to review")
	}
	if student.CanReview() {
		t.Error("student must not be able to review")
	}
	if !student.Is("student", "supervisor") {
		t.Error("Is should match any listed role")
	}
	if student.Is("supervisor") {
		t.Error("Is matched a role the session does not hold")
	}
}
