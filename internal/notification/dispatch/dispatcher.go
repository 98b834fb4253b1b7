// Package dispatch mediates between notification producers and the queue.
// It validates drafts, constructs records, and fans out full active-list
// snapshots to presentation adapters, gated by the current session.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/repetigone/internal/notification/domain"
	"github.com/louisbranch/repetigone/internal/notification/queue"
	"github.com/louisbranch/repetigone/internal/platform/id"
	sessiondomain "github.com/louisbranch/repetigone/internal/session/domain"
)

// Sessions is the read-only session observation surface the dispatcher
// needs for delivery gating.
type Sessions interface {
	Current() sessiondomain.Session
	Subscribe(fn func(previous, next sessiondomain.Session)) (unsubscribe func())
}

// Subscriber receives the full active snapshot for its scope on every
// queue change. Snapshots replace each other; adapters never reconcile
// deltas.
type Subscriber func(records []domain.Record)

// Dispatcher applies delivery policy between producers and the queue.
type Dispatcher struct {
	mu       sync.Mutex
	queue    *queue.Queue
	sessions Sessions
	clock    func() time.Time
	newID    func() (string, error)

	nextSub     int
	order       []int
	subscribers map[int]subscription

	unsubscribeSessions func()
}

type subscription struct {
	scope domain.Scope
	fn    Subscriber
}

// New creates a Dispatcher over the queue. It subscribes to the session
// surface so identity changes flush withheld scoped records in and foreign
// toasts out; Close releases that subscription.
func New(q *queue.Queue, sessions Sessions, clock func() time.Time, newID func() (string, error)) *Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	d := &Dispatcher{
		queue:       q,
		sessions:    sessions,
		clock:       clock,
		newID:       newID,
		subscribers: make(map[int]subscription),
	}
	if sessions != nil {
		d.unsubscribeSessions = sessions.Subscribe(func(previous, next sessiondomain.Session) {
			if previous.SubjectID != next.SubjectID || previous.Status != next.Status {
				d.deliverAll()
			}
		})
	}
	return d
}

// Close releases the dispatcher's session subscription.
func (d *Dispatcher) Close() {
	if d == nil || d.unsubscribeSessions == nil {
		return
	}
	d.unsubscribeSessions()
}

// Publish validates a draft, inserts the resulting record under scope, and
// delivers fresh snapshots to subscribers. Invalid drafts are rejected
// before any queue mutation.
func (d *Dispatcher) Publish(draft domain.Draft, scope domain.Scope) (domain.Record, error) {
	normalized, err := draft.Normalize()
	if err != nil {
		return domain.Record{}, err
	}
	recordID, err := d.newID()
	if err != nil {
		return domain.Record{}, fmt.Errorf("generate notification id: %w", err)
	}

	createdAt := d.clock().UTC()
	record := domain.Record{
		ID:        recordID,
		Topic:     normalized.Topic,
		DedupKey:  normalized.DedupKey,
		Severity:  normalized.Severity,
		Message:   normalized.Message,
		CreatedAt: createdAt,
		Scope:     scope,
	}
	if normalized.TTL > 0 {
		expiresAt := createdAt.Add(normalized.TTL)
		record.ExpiresAt = &expiresAt
	}

	d.queue.Insert(record)
	d.deliverAll()
	return record, nil
}

// Sweep drops expired records and, when any were removed, re-delivers
// snapshots so adapters shed expired toasts without watching clocks.
func (d *Dispatcher) Sweep(now time.Time) {
	if d.queue.SweepExpired(now) > 0 {
		d.deliverAll()
	}
}

// Dismiss marks a record dismissed and re-delivers snapshots. Unknown IDs
// are a no-op, keeping UI dismiss actions idempotent.
func (d *Dispatcher) Dismiss(recordID string) {
	d.queue.Dismiss(recordID)
	d.deliverAll()
}

// Subscribe registers a presentation adapter for scope. The adapter
// receives the current snapshot immediately and a replacement snapshot on
// every change. The returned unsubscribe is idempotent and safe to call
// from within a callback.
func (d *Dispatcher) Subscribe(scope domain.Scope, fn Subscriber) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	d.mu.Lock()
	subID := d.nextSub
	d.nextSub++
	d.order = append(d.order, subID)
	d.subscribers[subID] = subscription{scope: scope, fn: fn}
	d.mu.Unlock()

	fn(d.Snapshot(scope))

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.subscribers[subID]; !ok {
			return
		}
		delete(d.subscribers, subID)
		for i, candidate := range d.order {
			if candidate == subID {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Snapshot returns the records currently deliverable to a subscriber of
// scope, after session gating.
func (d *Dispatcher) Snapshot(scope domain.Scope) []domain.Record {
	return d.queue.ActiveSnapshot(d.effectiveScope(scope), d.clock().UTC())
}

// effectiveScope narrows a subscriber's scope to global-only while no
// matching authenticated session exists. Scoped records stay queued for
// later reconciliation; they are only withheld from delivery.
func (d *Dispatcher) effectiveScope(scope domain.Scope) domain.Scope {
	if scope == domain.ScopeGlobal {
		return scope
	}
	if d.sessions == nil {
		return scope
	}
	current := d.sessions.Current()
	if current.Authenticated() && domain.Scope(current.SubjectID) == scope {
		return scope
	}
	return domain.ScopeGlobal
}

func (d *Dispatcher) deliverAll() {
	d.mu.Lock()
	ids := make([]int, len(d.order))
	copy(ids, d.order)
	d.mu.Unlock()

	for _, subID := range ids {
		d.mu.Lock()
		sub, ok := d.subscribers[subID]
		d.mu.Unlock()
		if !ok {
			continue
		}
		sub.fn(d.Snapshot(sub.scope))
	}
}
