package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestInspectAccessToken(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	raw := signToken(t, jwt.MapClaims{
		"sub": "u1",
		"exp": expiry.Unix(),
	})

	subjectID, expiresAt, err := InspectAccessToken(raw)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if subjectID != "u1" {
		t.Fatalf("subject = %q, want u1", subjectID)
	}
	if expiresAt == nil || !expiresAt.Equal(expiry) {
		t.Fatalf("expiry = %v, want %s", expiresAt, expiry)
	}
}

func TestInspectAccessTokenWithoutExpiry(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{"sub": "u1"})

	subjectID, expiresAt, err := InspectAccessToken(raw)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if subjectID != "u1" || expiresAt != nil {
		t.Fatalf("unexpected result: %q %v", subjectID, expiresAt)
	}
}

func TestInspectAccessTokenMissingSubject(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	if _, _, err := InspectAccessToken(raw); !errors.Is(err, ErrTokenSubjectMissing) {
		t.Fatalf("expected ErrTokenSubjectMissing, got %v", err)
	}
}

func TestInspectAccessTokenMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b"} {
		if _, _, err := InspectAccessToken(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("raw %q: expected ErrTokenInvalid, got %v", raw, err)
		}
	}
}
