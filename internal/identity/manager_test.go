package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	sessiondomain "github.com/louisbranch/repetigone/internal/session/domain"
	sessionstore "github.com/louisbranch/repetigone/internal/session/store"
)

type fakeSource struct {
	loginTokens   Tokens
	loginErr      error
	refreshTokens Tokens
	refreshErr    error
	refreshCalls  int
	lastRefresh   string
}

func (f *fakeSource) Login(ctx context.Context, credentials Credentials) (Tokens, error) {
	if f.loginErr != nil {
		return Tokens{}, f.loginErr
	}
	return f.loginTokens, nil
}

func (f *fakeSource) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	f.refreshCalls++
	f.lastRefresh = refreshToken
	if f.refreshErr != nil {
		return Tokens{}, f.refreshErr
	}
	return f.refreshTokens, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func accessToken(t *testing.T, subjectID string, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subjectID,
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestManagerLoginSuccess(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{loginTokens: Tokens{
		AccessToken:  accessToken(t, "u1", expiry),
		RefreshToken: "refresh-1",
	}}
	m := NewManager(source, sessions, fixedClock(now), 0)

	if err := m.Login(context.Background(), Credentials{Email: "user@example.com"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	current := sessions.Current()
	if current.Status != sessiondomain.StatusAuthenticated || current.SubjectID != "u1" {
		t.Fatalf("unexpected session: %+v", current)
	}
	if current.ExpiresAt == nil || !current.ExpiresAt.Equal(expiry) {
		t.Fatalf("expiry = %v, want %s", current.ExpiresAt, expiry)
	}
}

func TestManagerLoginFailureTransitionsToError(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{loginErr: ErrUnauthorized}
	m := NewManager(source, sessions, fixedClock(now), 0)

	err := m.Login(context.Background(), Credentials{Email: "user@example.com"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	current := sessions.Current()
	if current.Status != sessiondomain.StatusError {
		t.Fatalf("status = %s, want ERROR", current.Status)
	}
	if current.LastError == nil {
		t.Fatal("expected last error populated")
	}
}

func TestManagerLoginRejectedWhileAuthenticated(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{loginTokens: Tokens{AccessToken: accessToken(t, "u1", expiry)}}
	m := NewManager(source, sessions, fixedClock(now), 0)

	if err := m.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if err := m.Login(context.Background(), Credentials{}); !errors.Is(err, sessiondomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestManagerTickRefreshesInsideLead(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(30 * time.Second)
	renewed := now.Add(time.Hour)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{
		loginTokens: Tokens{
			AccessToken:  accessToken(t, "u1", expiry),
			RefreshToken: "refresh-1",
		},
		refreshTokens: Tokens{
			AccessToken:  accessToken(t, "u1", renewed),
			RefreshToken: "refresh-2",
		},
	}
	m := NewManager(source, sessions, fixedClock(now), time.Minute)

	if err := m.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.Tick(context.Background(), now.Add(time.Second)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if source.lastRefresh != "refresh-1" {
		t.Fatalf("refresh called with %q, want refresh-1", source.lastRefresh)
	}

	current := sessions.Current()
	if current.Status != sessiondomain.StatusAuthenticated {
		t.Fatalf("status = %s, want AUTHENTICATED", current.Status)
	}
	if current.ExpiresAt == nil || !current.ExpiresAt.Equal(renewed) {
		t.Fatalf("expiry = %v, want %s", current.ExpiresAt, renewed)
	}

	// Next tick is outside the lead of the renewed expiry: no refresh.
	if err := m.Tick(context.Background(), now.Add(2*time.Second)); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if source.refreshCalls != 1 {
		t.Fatalf("refresh calls = %d, want 1", source.refreshCalls)
	}
}

func TestManagerTickDetectsExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(30 * time.Second)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{loginTokens: Tokens{AccessToken: accessToken(t, "u1", expiry)}}
	m := NewManager(source, sessions, fixedClock(now), time.Minute)

	if err := m.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.Tick(context.Background(), expiry); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := sessions.Current().Status; got != sessiondomain.StatusExpired {
		t.Fatalf("status = %s, want EXPIRED", got)
	}
	if source.refreshCalls != 0 {
		t.Fatalf("expected no refresh past deadline, got %d", source.refreshCalls)
	}
}

func TestManagerTickDeadRefreshTokenExpiresSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(30 * time.Second)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{
		loginTokens: Tokens{AccessToken: accessToken(t, "u1", expiry)},
		refreshErr:  ErrUnauthorized,
	}
	m := NewManager(source, sessions, fixedClock(now), time.Minute)

	if err := m.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.Tick(context.Background(), now.Add(time.Second)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := sessions.Current().Status; got != sessiondomain.StatusExpired {
		t.Fatalf("status = %s, want EXPIRED", got)
	}
}

func TestManagerLogout(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)
	sessions := sessionstore.New(fixedClock(now))
	source := &fakeSource{loginTokens: Tokens{AccessToken: accessToken(t, "u1", expiry), RefreshToken: "refresh-1"}}
	m := NewManager(source, sessions, fixedClock(now), 0)

	if err := m.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := sessions.Current().Status; got != sessiondomain.StatusAnonymous {
		t.Fatalf("status = %s, want ANONYMOUS", got)
	}
	if m.currentRefreshToken() != "" {
		t.Fatal("expected refresh token cleared on logout")
	}
}
