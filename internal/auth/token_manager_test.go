package auth

import (
	"testing"
	"time"
)

func newTestManager(clock func() time.Time) *TokenManager {
	return NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("unit-secret"),
		Issuer:        "fieldbook-auth",
		Audience:      "fieldbook-api",
		TokenTTL:      30 * time.Minute,
		Clock:         clock,
	})
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	now := time.Unix(1760000000, 0).UTC()
	manager := newTestManager(func() time.Time { return now })

	token, expiresIn, err := manager.IssueToken("surveyor-1")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if expiresIn != int64((30 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expiry %d", expiresIn)
	}

	callerID, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if callerID != "surveyor-1" {
		t.Fatalf("unexpected caller id %q", callerID)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Unix(1760000000, 0).UTC()
	manager := newTestManager(func() time.Time { return issuedAt })

	token, _, err := manager.IssueToken("surveyor-1")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	late := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("unit-secret"),
		Issuer:        "fieldbook-auth",
		Audience:      "fieldbook-api",
		Clock:         func() time.Time { return issuedAt.Add(2 * time.Hour) },
	})
	if _, err := late.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestValidateRejectsForeignAudience(t *testing.T) {
	now := time.Unix(1760000000, 0).UTC()
	manager := newTestManager(func() time.Time { return now })
	token, _, err := manager.IssueToken("surveyor-1")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	other := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("unit-secret"),
		Issuer:        "fieldbook-auth",
		Audience:      "some-other-api",
		Clock:         func() time.Time { return now },
	})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected audience mismatch to fail")
	}
}

func TestValidateRejectsTamperedSecret(t *testing.T) {
	now := time.Unix(1760000000, 0).UTC()
	manager := newTestManager(func() time.Time { return now })
	token, _, err := manager.IssueToken("surveyor-1")
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	forger := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("different-secret"),
		Issuer:        "fieldbook-auth",
		Audience:      "fieldbook-api",
		Clock:         func() time.Time { return now },
	})
	if _, err := forger.ValidateToken(token); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	manager := newTestManager(time.Now)
	if _, _, err := manager.IssueToken("   "); err == nil {
		t.Fatalf("expected blank caller id to fail")
	}
}
