package middleware

import (
	"testing"
)

func TestCustomerTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := IssueCustomerToken(42, "628123456789")
	if err != nil {
		t.Fatalf("IssueCustomerToken failed: %v", err)
	}

	claims, err := ParseCustomerToken(token)
	if err != nil {
		t.Fatalf("ParseCustomerToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Phone != "628123456789" {
		t.Errorf("Phone = %q, want 628123456789", claims.Phone)
	}
}

func TestParseCustomerTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := ParseCustomerToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestParseCustomerTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := IssueCustomerToken(1, "628111")
	if err != nil {
		t.Fatalf("IssueCustomerToken failed: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := ParseCustomerToken(token); err == nil {
		t.Error("expected signature verification to fail with a different secret")
	}
}
