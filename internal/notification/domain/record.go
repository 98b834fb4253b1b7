package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Severity ranks how prominently a notification should surface.
type Severity int

const (
	// SeverityUnspecified represents an invalid severity value.
	SeverityUnspecified Severity = iota
	// SeverityInfo marks neutral informational notifications.
	SeverityInfo
	// SeveritySuccess marks confirmations of completed actions.
	SeveritySuccess
	// SeverityWarning marks conditions that need viewer attention.
	SeverityWarning
	// SeverityError marks failures.
	SeverityError
)

// Scope is the visibility partition of a notification. ScopeGlobal records
// are visible to every viewer; subject-scoped records only to that subject.
type Scope string

// ScopeGlobal is the session-agnostic scope.
const ScopeGlobal Scope = ""

var (
	// ErrInvalidNotification indicates a draft that fails validation. No
	// record is created from an invalid draft.
	ErrInvalidNotification = errors.New("invalid notification")
	// ErrMessageRequired indicates an empty notification message.
	ErrMessageRequired = fmt.Errorf("%w: message is required", ErrInvalidNotification)
	// ErrSeverityInvalid indicates an undefined severity value.
	ErrSeverityInvalid = fmt.Errorf("%w: severity is invalid", ErrInvalidNotification)
	// ErrNegativeTTL indicates a negative time-to-live.
	ErrNegativeTTL = fmt.Errorf("%w: ttl must not be negative", ErrInvalidNotification)
)

// Record is one queued notification.
type Record struct {
	ID string
	// Topic is the stable producer-assigned category, used for rendering.
	Topic string
	// DedupKey limits a category to one active record per scope; empty
	// disables deduplication.
	DedupKey  string
	Severity  Severity
	Message   string
	CreatedAt time.Time
	// ExpiresAt is the delivery deadline; nil means the record persists
	// until dismissed.
	ExpiresAt *time.Time
	// Scope is the subject the record was created under, or ScopeGlobal.
	Scope     Scope
	Dismissed bool
}

// Draft is a producer request for a new notification.
type Draft struct {
	Topic    string
	Message  string
	Severity Severity
	DedupKey string
	// TTL computes ExpiresAt relative to creation; zero means the record
	// persists until dismissed.
	TTL time.Duration
}

// Normalize trims draft fields and validates them. It returns the
// normalized draft or ErrInvalidNotification.
func (d Draft) Normalize() (Draft, error) {
	d.Topic = strings.TrimSpace(d.Topic)
	d.Message = strings.TrimSpace(d.Message)
	d.DedupKey = strings.TrimSpace(d.DedupKey)
	if d.Message == "" {
		return Draft{}, ErrMessageRequired
	}
	if !d.Severity.IsValid() {
		return Draft{}, ErrSeverityInvalid
	}
	if d.TTL < 0 {
		return Draft{}, ErrNegativeTTL
	}
	return d, nil
}

// Active reports whether the record is neither dismissed nor expired at
// now. The expiry boundary is inclusive: a record expires exactly at its
// deadline.
func (r Record) Active(now time.Time) bool {
	if r.Dismissed {
		return false
	}
	if r.ExpiresAt != nil && !now.Before(*r.ExpiresAt) {
		return false
	}
	return true
}

// VisibleTo reports whether the record may be shown to viewers of scope.
func (r Record) VisibleTo(scope Scope) bool {
	return r.Scope == ScopeGlobal || r.Scope == scope
}

// String returns the canonical severity token.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeveritySuccess:
		return "SUCCESS"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "SEVERITY_UNSPECIFIED"
	}
}

// IsValid reports whether the severity is a defined value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	default:
		return false
	}
}
