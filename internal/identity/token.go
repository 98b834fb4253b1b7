package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid indicates an access token whose claims cannot be read.
	ErrTokenInvalid = errors.New("identity: invalid access token")
	// ErrTokenSubjectMissing indicates an access token without a subject.
	ErrTokenSubjectMissing = errors.New("identity: access token subject missing")
)

// InspectAccessToken reads the subject and expiry claims from an access
// token without verifying its signature. The identity service is the
// verifier; claims read here are display-grade session metadata only.
func InspectAccessToken(raw string) (subjectID string, expiresAt *time.Time, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, ErrTokenInvalid
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	subjectID, err = claims.GetSubject()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", nil, ErrTokenSubjectMissing
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if expiry != nil {
		utc := expiry.Time.UTC()
		expiresAt = &utc
	}
	return subjectID, expiresAt, nil
}
