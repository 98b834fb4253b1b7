// Package bridge translates session state transitions into notification
// events. The mapping is a total function over status pairs; pairs without
// an entry intentionally produce nothing.
package bridge

import (
	"time"

	notifdomain "github.com/louisbranch/repetigone/internal/notification/domain"
	sessiondomain "github.com/louisbranch/repetigone/internal/session/domain"
)

// Topics emitted by the bridge. Presentation adapters key rendering and
// dedup behavior off these.
const (
	TopicLogin       = "session.login"
	TopicLoginFailed = "session.login_failed"
	TopicExpired     = "session.expired"
	TopicLogout      = "session.logout"
)

const loginToastTTL = 5 * time.Second

// Publisher is the dispatcher surface the bridge publishes through.
type Publisher interface {
	Publish(draft notifdomain.Draft, scope notifdomain.Scope) (notifdomain.Record, error)
}

// Sessions is the transition feed the bridge observes.
type Sessions interface {
	Subscribe(fn func(previous, next sessiondomain.Session)) (unsubscribe func())
}

// Bridge subscribes to session transitions and publishes the matching
// notification, if any. It holds no state beyond its subscription handle.
type Bridge struct {
	unsubscribe func()
}

// New wires the bridge to the session feed. Publish failures never
// propagate into the session transition; they are reported through
// onError when provided.
func New(sessions Sessions, publisher Publisher, onError func(error)) *Bridge {
	b := &Bridge{}
	b.unsubscribe = sessions.Subscribe(func(previous, next sessiondomain.Session) {
		draft, scope, ok := Map(previous, next)
		if !ok {
			return
		}
		if _, err := publisher.Publish(draft, scope); err != nil && onError != nil {
			onError(err)
		}
	})
	return b
}

// Close releases the session subscription. Safe to call more than once.
func (b *Bridge) Close() {
	if b == nil || b.unsubscribe == nil {
		return
	}
	b.unsubscribe()
}

// Map returns the notification draft and scope for one transition, or
// ok=false when the pair surfaces nothing. Every (previous, next) status
// pair has a defined outcome; silence is an outcome, not a gap.
func Map(previous, next sessiondomain.Session) (notifdomain.Draft, notifdomain.Scope, bool) {
	switch {
	case previous.Status == sessiondomain.StatusAuthenticating && next.Status == sessiondomain.StatusAuthenticated:
		return notifdomain.Draft{
			Topic:    TopicLogin,
			Message:  "Signed in.",
			Severity: notifdomain.SeveritySuccess,
			DedupKey: TopicLogin,
			TTL:      loginToastTTL,
		}, notifdomain.Scope(next.SubjectID), true
	case previous.Status == sessiondomain.StatusAuthenticating && next.Status == sessiondomain.StatusError:
		return notifdomain.Draft{
			Topic:    TopicLoginFailed,
			Message:  "Sign-in failed.",
			Severity: notifdomain.SeverityError,
		}, notifdomain.ScopeGlobal, true
	case previous.Status == sessiondomain.StatusAuthenticated && next.Status == sessiondomain.StatusExpired:
		// Until dismissed and undeduplicated: every expiry is its own record.
		return notifdomain.Draft{
			Topic:    TopicExpired,
			Message:  "Your session expired. Sign in again to continue.",
			Severity: notifdomain.SeverityWarning,
		}, notifdomain.ScopeGlobal, true
	case previous.Status == sessiondomain.StatusAuthenticated && next.Status == sessiondomain.StatusAnonymous:
		return notifdomain.Draft{
			Topic:    TopicLogout,
			Message:  "Signed out.",
			Severity: notifdomain.SeverityInfo,
			DedupKey: TopicLogout,
			TTL:      loginToastTTL,
		}, notifdomain.ScopeGlobal, true
	default:
		return notifdomain.Draft{}, notifdomain.ScopeGlobal, false
	}
}
