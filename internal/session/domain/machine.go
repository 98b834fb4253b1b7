package domain

import (
	"fmt"
	"strings"
	"time"
)

// Apply runs one event through the session state machine and returns the
// resulting session value. On any error the input session is returned
// unchanged; illegal (status, event) pairs fail with ErrInvalidTransition.
func Apply(current Session, event Event, now time.Time) (Session, error) {
	now = now.UTC()

	switch e := event.(type) {
	case LoginStarted:
		switch current.Status {
		case StatusAnonymous, StatusExpired, StatusError:
			return Session{Status: StatusAuthenticating, IssuedAt: now}, nil
		}
	case LoginSucceeded:
		// Anonymous is legal here too: a restored session signs in
		// without an in-flight attempt.
		if current.Status != StatusAuthenticating && current.Status != StatusAnonymous {
			break
		}
		subjectID := strings.TrimSpace(e.SubjectID)
		if subjectID == "" {
			return current, ErrSubjectIDRequired
		}
		expiresAt := normalizeExpiry(e.ExpiresAt)
		if expiresAt != nil && !expiresAt.After(now) {
			return current, ErrExpiryInPast
		}
		return Session{
			SubjectID: subjectID,
			Status:    StatusAuthenticated,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		}, nil
	case LoginFailed:
		if current.Status != StatusAuthenticating {
			break
		}
		return Session{Status: StatusError, IssuedAt: now, LastError: e.Err}, nil
	case LogoutRequested:
		switch current.Status {
		case StatusAuthenticating, StatusAuthenticated, StatusExpired, StatusError:
			return Session{Status: StatusAnonymous, IssuedAt: now}, nil
		}
	case SessionExpiredDetected:
		if current.Status != StatusAuthenticated {
			break
		}
		return Session{
			SubjectID: current.SubjectID,
			Status:    StatusExpired,
			IssuedAt:  now,
			ExpiresAt: current.ExpiresAt,
		}, nil
	case RefreshSucceeded:
		if current.Status != StatusAuthenticated {
			break
		}
		expiresAt := normalizeExpiry(e.ExpiresAt)
		if expiresAt == nil {
			return current, ErrExpiryRequired
		}
		if !expiresAt.After(now) {
			return current, ErrExpiryInPast
		}
		renewed := current
		renewed.IssuedAt = now
		renewed.ExpiresAt = expiresAt
		return renewed, nil
	default:
		return current, fmt.Errorf("%w: unknown event %T in %s", ErrInvalidTransition, event, current.Status)
	}

	return current, fmt.Errorf("%w: %T in %s", ErrInvalidTransition, event, current.Status)
}

func normalizeExpiry(expiresAt *time.Time) *time.Time {
	if expiresAt == nil || expiresAt.IsZero() {
		return nil
	}
	utc := expiresAt.UTC()
	return &utc
}
