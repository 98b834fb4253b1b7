package domain

import "time"

// Event is a session lifecycle event consumed by Apply. The set of
// implementations is closed; producers construct them from identity
// service outcomes or user actions.
type Event interface {
	isSessionEvent()
}

// LoginStarted records that a sign-in attempt began.
type LoginStarted struct{}

// LoginSucceeded records a successful sign-in for a subject.
type LoginSucceeded struct {
	SubjectID string
	// ExpiresAt is the session deadline supplied by the identity service;
	// nil when the session does not expire.
	ExpiresAt *time.Time
}

// LoginFailed records a failed sign-in attempt.
type LoginFailed struct {
	Err error
}

// LogoutRequested records an explicit sign-out or session reset.
type LogoutRequested struct{}

// SessionExpiredDetected records that the session deadline passed.
type SessionExpiredDetected struct{}

// RefreshSucceeded records a successful session renewal with a new deadline.
type RefreshSucceeded struct {
	ExpiresAt *time.Time
}

func (LoginStarted) isSessionEvent()           {}
func (LoginSucceeded) isSessionEvent()         {}
func (LoginFailed) isSessionEvent()            {}
func (LogoutRequested) isSessionEvent()        {}
func (SessionExpiredDetected) isSessionEvent() {}
func (RefreshSucceeded) isSessionEvent()       {}
