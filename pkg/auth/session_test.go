package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	s, err := NewSessions("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}
	token, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := s.VerifySubject(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", subject)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	s, _ := NewSessions("test-secret", time.Minute)
	token, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := s.VerifySubject(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token accepted: %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewSessions("secret-a", time.Minute)
	verifier, _ := NewSessions("secret-b", time.Minute)
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.VerifySubject(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token with wrong secret accepted: %v", err)
	}
}

func TestNewSessionsRequiresSecret(t *testing.T) {
	if _, err := NewSessions("  ", time.Minute); err == nil {
		t.Fatalf("expected constructor error for empty secret")
	}
}
