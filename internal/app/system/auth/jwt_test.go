// internal/app/system/auth/jwt_test.go

package auth

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-for-round-trip", time.Hour)

	userID := primitive.NewObjectID()
	token, err := issuer.Issue(userID, "round@trip.test")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != userID {
		t.Fatalf("Verify returned %s, want %s", got.Hex(), userID.Hex())
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-one", time.Hour)
	other := NewTokenIssuer("secret-two", time.Hour)

	token, err := issuer.Issue(primitive.NewObjectID(), "wrong@secret.test")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify with wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("expiry-secret", -time.Minute)

	token, err := issuer.Issue(primitive.NewObjectID(), "expired@token.test")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer("garbage-secret", time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): err = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestTTL(t *testing.T) {
	issuer := NewTokenIssuer("ttl-secret", 36*time.Hour)
	if got := issuer.TTL(); got != 36*time.Hour {
		t.Fatalf("TTL() = %v, want 36h", got)
	}
}
