package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sessiondomain "github.com/louisbranch/repetigone/internal/session/domain"
)

// DefaultRefreshLead is how far ahead of the session deadline a renewal
// attempt starts.
const DefaultRefreshLead = time.Minute

// Sessions is the session store surface the manager drives.
type Sessions interface {
	Current() sessiondomain.Session
	Transition(event sessiondomain.Event) (sessiondomain.Session, error)
}

// Manager converts identity service outcomes into session events and
// keeps an authenticated session renewed ahead of its expiry.
type Manager struct {
	source   TokenSource
	sessions Sessions
	clock    func() time.Time
	lead     time.Duration

	mu           sync.Mutex
	refreshToken string
}

// NewManager wires a token source to the session store. A non-positive
// lead selects DefaultRefreshLead.
func NewManager(source TokenSource, sessions Sessions, clock func() time.Time, lead time.Duration) *Manager {
	if clock == nil {
		clock = time.Now
	}
	if lead <= 0 {
		lead = DefaultRefreshLead
	}
	return &Manager{
		source:   source,
		sessions: sessions,
		clock:    clock,
		lead:     lead,
	}
}

// Login runs the full sign-in flow: LoginStarted, the identity call, and
// LoginSucceeded or LoginFailed depending on the outcome. The returned
// error reflects the identity outcome; state machine rejections surface
// as-is without contacting the service.
func (m *Manager) Login(ctx context.Context, credentials Credentials) error {
	if _, err := m.sessions.Transition(sessiondomain.LoginStarted{}); err != nil {
		return err
	}

	tokens, err := m.source.Login(ctx, credentials)
	if err != nil {
		return m.failLogin(fmt.Errorf("identity login: %w", err))
	}
	subjectID, expiresAt, err := InspectAccessToken(tokens.AccessToken)
	if err != nil {
		return m.failLogin(err)
	}

	if _, err := m.sessions.Transition(sessiondomain.LoginSucceeded{SubjectID: subjectID, ExpiresAt: expiresAt}); err != nil {
		return err
	}
	m.setRefreshToken(tokens.RefreshToken)
	return nil
}

// Logout resets the session and drops the stored refresh token.
func (m *Manager) Logout() error {
	m.setRefreshToken("")
	_, err := m.sessions.Transition(sessiondomain.LogoutRequested{})
	return err
}

// Tick evaluates the session against now: past the deadline it reports
// expiry; inside the refresh lead it renews the session through the
// identity service. A failed renewal attempt is left for the next tick
// until the deadline passes.
func (m *Manager) Tick(ctx context.Context, now time.Time) error {
	current := m.sessions.Current()
	if !current.Authenticated() || current.ExpiresAt == nil {
		return nil
	}
	now = now.UTC()

	if !now.Before(*current.ExpiresAt) {
		_, err := m.sessions.Transition(sessiondomain.SessionExpiredDetected{})
		return err
	}
	if now.Before(current.ExpiresAt.Add(-m.lead)) {
		return nil
	}

	tokens, err := m.source.Refresh(ctx, m.currentRefreshToken())
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			// The refresh token is dead; the session cannot outlive it.
			_, transitionErr := m.sessions.Transition(sessiondomain.SessionExpiredDetected{})
			return errors.Join(err, transitionErr)
		}
		return fmt.Errorf("identity refresh: %w", err)
	}

	_, expiresAt, err := InspectAccessToken(tokens.AccessToken)
	if err != nil {
		return err
	}
	if _, err := m.sessions.Transition(sessiondomain.RefreshSucceeded{ExpiresAt: expiresAt}); err != nil {
		return err
	}
	m.setRefreshToken(tokens.RefreshToken)
	return nil
}

// Run ticks the manager until ctx is done. Tick errors are reported
// through onError when provided; the loop keeps running.
func (m *Manager) Run(ctx context.Context, interval time.Duration, onError func(error)) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Tick(ctx, m.clock()); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

func (m *Manager) failLogin(cause error) error {
	if _, err := m.sessions.Transition(sessiondomain.LoginFailed{Err: cause}); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (m *Manager) setRefreshToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshToken = token
}

func (m *Manager) currentRefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken
}
