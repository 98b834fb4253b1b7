// Package domain defines notification records, drafts, and their
// validation rules. Records are immutable once created apart from the
// dismissed flag, which the queue owns.
package domain
