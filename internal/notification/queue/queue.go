// Package queue holds the in-memory notification collection. The queue is
// the sole owner of record state: deduplication, expiry, dismissal, and
// capacity eviction all happen here, independent of delivery.
package queue

import (
	"iter"
	"sync"
	"time"

	"github.com/louisbranch/repetigone/internal/notification/domain"
)

// DefaultScopeCapacity bounds retained records per scope, counting
// dismissed records that have not been swept yet.
const DefaultScopeCapacity = 100

// Queue is an ordered, deduplicated, expiring collection of notification
// records. Records are kept in insertion order internally; reads present
// newest first.
type Queue struct {
	mu            sync.Mutex
	records       []domain.Record
	scopeCapacity int
}

// New creates an empty queue. A non-positive scopeCapacity selects
// DefaultScopeCapacity.
func New(scopeCapacity int) *Queue {
	if scopeCapacity <= 0 {
		scopeCapacity = DefaultScopeCapacity
	}
	return &Queue{scopeCapacity: scopeCapacity}
}

// Insert adds a record, replacing any active record that shares its
// non-empty dedup key and scope. Replacement inserts a fresh record: the
// prior record's creation time does not survive, so a re-trigger restarts
// the presentation timer. Capacity eviction may drop the oldest dismissed
// records of the scope, then the oldest active ones.
func (q *Queue) Insert(record domain.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if record.DedupKey != "" {
		now := record.CreatedAt
		for i := len(q.records) - 1; i >= 0; i-- {
			existing := q.records[i]
			if existing.Scope == record.Scope && existing.DedupKey == record.DedupKey && existing.Active(now) {
				q.records = append(q.records[:i], q.records[i+1:]...)
			}
		}
	}

	q.records = append(q.records, record)
	q.enforceCapacityLocked(record.Scope)
}

// SweepExpired removes every record whose expiry deadline has passed and
// returns how many were dropped. Reads sweep lazily; a periodic caller
// keeps memory bounded between reads.
func (q *Queue) SweepExpired(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sweepLocked(now)
}

// Dismiss marks a record dismissed. Unknown or already dismissed IDs are
// a no-op so UI dismiss actions stay idempotent.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.records {
		if q.records[i].ID == id {
			q.records[i].Dismissed = true
			return
		}
	}
}

// ListActive returns a lazy, restartable sequence of the records visible
// to scope at now, newest first. Expired records are swept before the
// snapshot is taken.
func (q *Queue) ListActive(scope domain.Scope, now time.Time) iter.Seq[domain.Record] {
	snapshot := q.ActiveSnapshot(scope, now)
	return func(yield func(domain.Record) bool) {
		for _, record := range snapshot {
			if !yield(record) {
				return
			}
		}
	}
}

// ActiveSnapshot materializes ListActive into a slice, newest first.
func (q *Queue) ActiveSnapshot(scope domain.Scope, now time.Time) []domain.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked(now)

	var out []domain.Record
	for i := len(q.records) - 1; i >= 0; i-- {
		record := q.records[i]
		if record.Active(now) && record.VisibleTo(scope) {
			out = append(out, record)
		}
	}
	return out
}

// Len returns the number of retained records, dismissed included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

func (q *Queue) sweepLocked(now time.Time) int {
	kept := q.records[:0]
	for _, record := range q.records {
		if record.ExpiresAt != nil && !now.Before(*record.ExpiresAt) {
			continue
		}
		kept = append(kept, record)
	}
	removed := len(q.records) - len(kept)
	q.records = kept
	return removed
}

// enforceCapacityLocked drops the scope's oldest dismissed records, then
// its oldest remaining records, until the scope fits its capacity.
func (q *Queue) enforceCapacityLocked(scope domain.Scope) {
	over := q.scopeCountLocked(scope) - q.scopeCapacity
	for pass := 0; pass < 2 && over > 0; pass++ {
		dismissedOnly := pass == 0
		for i := 0; i < len(q.records) && over > 0; {
			record := q.records[i]
			if record.Scope == scope && (!dismissedOnly || record.Dismissed) {
				q.records = append(q.records[:i], q.records[i+1:]...)
				over--
				continue
			}
			i++
		}
	}
}

func (q *Queue) scopeCountLocked(scope domain.Scope) int {
	count := 0
	for _, record := range q.records {
		if record.Scope == scope {
			count++
		}
	}
	return count
}
