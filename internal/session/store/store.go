// Package store owns the live viewer session value. The Store is the sole
// writer; every other component observes it through Current or Subscribe.
package store

import (
	"sync"
	"time"

	"github.com/louisbranch/repetigone/internal/session/domain"
)

// Listener receives the previous and next session after a transition.
// It is an alias so observer interfaces can spell out the function type
// without converting.
type Listener = func(previous, next domain.Session)

// Store holds the current session and fans out transitions to subscribers.
//
// Transitions and deliveries run to completion while holding no lock during
// callback execution, so a listener may transition or subscribe re-entrantly
// without deadlocking. Listeners registered during a delivery do not observe
// the in-flight transition.
type Store struct {
	mu       sync.Mutex
	session  domain.Session
	clock    func() time.Time
	nextSub  int
	order    []int
	handlers map[int]Listener
}

// New creates a Store holding the initial anonymous session.
func New(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		session:  domain.NewSession(clock()),
		clock:    clock,
		handlers: make(map[int]Listener),
	}
}

// Current returns a snapshot of the session. Readers never observe a
// partially applied transition.
func (s *Store) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Transition applies one event through the session state machine. On
// success the stored session is replaced atomically and subscribers are
// notified synchronously in subscription order. On failure the stored
// session is unchanged and no subscriber runs.
func (s *Store) Transition(event domain.Event) (domain.Session, error) {
	s.mu.Lock()
	previous := s.session
	next, err := domain.Apply(previous, event, s.clock())
	if err != nil {
		s.mu.Unlock()
		return previous, err
	}
	s.session = next
	ids := make([]int, len(s.order))
	copy(ids, s.order)
	s.mu.Unlock()

	for _, subID := range ids {
		s.mu.Lock()
		handler := s.handlers[subID]
		s.mu.Unlock()
		if handler != nil {
			handler(previous, next)
		}
	}
	return next, nil
}

// Subscribe registers a listener for future transitions and returns an
// unsubscribe function. Unsubscribing is idempotent and safe to call from
// within a listener.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	subID := s.nextSub
	s.nextSub++
	s.order = append(s.order, subID)
	s.handlers[subID] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.handlers[subID]; !ok {
			return
		}
		delete(s.handlers, subID)
		for i, candidate := range s.order {
			if candidate == subID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}
