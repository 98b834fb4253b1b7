// Package storage declares persistence interfaces shared across the shell.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// TelemetryEvent is one operational event emitted by the shell.
type TelemetryEvent struct {
	Name string
	// Severity is INFO, WARN, or ERROR.
	Severity string
	// Subject is the session subject the event relates to; empty when none.
	Subject string
	// DetailJSON carries event-specific fields as a JSON object.
	DetailJSON string
	Timestamp  time.Time
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
	// ListTelemetryEvents returns up to limit events, newest first.
	ListTelemetryEvents(ctx context.Context, limit int) ([]TelemetryEvent, error)
}
