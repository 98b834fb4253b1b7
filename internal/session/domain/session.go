package domain

import (
	"errors"
	"time"
)

// Status describes the authentication lifecycle state of the viewer session.
type Status int

const (
	// StatusUnspecified represents an invalid session status value.
	StatusUnspecified Status = iota
	// StatusAnonymous indicates no authenticated viewer.
	StatusAnonymous
	// StatusAuthenticating indicates a sign-in attempt is in flight.
	StatusAuthenticating
	// StatusAuthenticated indicates a signed-in viewer with a fresh session.
	StatusAuthenticated
	// StatusExpired indicates the session outlived its expiry and needs re-login.
	StatusExpired
	// StatusError indicates the last sign-in attempt failed.
	StatusError
)

var (
	// ErrInvalidTransition indicates an event that is not legal in the
	// current session status. The session value is left unchanged.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSubjectIDRequired indicates a login result without a subject.
	ErrSubjectIDRequired = errors.New("subject id is required")
	// ErrExpiryRequired indicates a login or refresh result without an expiry.
	ErrExpiryRequired = errors.New("session expiry is required")
	// ErrExpiryInPast indicates a login or refresh result whose expiry
	// has already passed.
	ErrExpiryInPast = errors.New("session expiry is in the past")
)

// Session is the authentication state of the current viewer.
type Session struct {
	// SubjectID identifies the signed-in viewer; empty when unauthenticated.
	SubjectID string
	Status    Status
	// IssuedAt records when the session entered its current status.
	IssuedAt time.Time
	// ExpiresAt is the session deadline; nil when no expiry applies.
	ExpiresAt *time.Time
	// LastError holds the failure from the most recent sign-in attempt.
	LastError error
}

// NewSession returns the initial anonymous session for a process.
func NewSession(now time.Time) Session {
	return Session{
		Status:   StatusAnonymous,
		IssuedAt: now.UTC(),
	}
}

// String returns the canonical status token.
func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "ANONYMOUS"
	case StatusAuthenticating:
		return "AUTHENTICATING"
	case StatusAuthenticated:
		return "AUTHENTICATED"
	case StatusExpired:
		return "EXPIRED"
	case StatusError:
		return "ERROR"
	default:
		return "STATUS_UNSPECIFIED"
	}
}

// IsValid reports whether the status is a defined lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusAnonymous, StatusAuthenticating, StatusAuthenticated, StatusExpired, StatusError:
		return true
	default:
		return false
	}
}

// Authenticated reports whether the session carries a signed-in viewer.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.SubjectID != ""
}
