// Package changelog implements the engine's per-row audit stream:
// optional, disabled by default, written by the same transaction that
// performs the user change so log and data never drift.
package changelog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action is one of the three row-level mutations the log can record.
type Action int

const (
	ActionInsert Action = iota
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "I"
	case ActionUpdate:
		return "U"
	case ActionDelete:
		return "D"
	default:
		return "?"
	}
}

// Entry is one (row id, table, action) record: a monotonic sequence
// number, table name, row id, and action. Row snapshots are left to
// whatever consumes the log; the engine only emits the identity of what
// changed.
type Entry struct {
	Seq       int64
	Table     string
	RowID     int64
	Action    Action
	Timestamp time.Time
	BatchID   uuid.UUID
}

// Batch accumulates the entries produced by one in-flight transaction.
// It is not visible in the Log until CommitBatch runs, so a rolled-back
// transaction never leaves a trace.
type Batch struct {
	id      uuid.UUID
	enabled bool
	entries []Entry
}

// Append records one row mutation in the batch. A no-op when the change
// log is disabled, avoiding any allocation overhead in the default
// (disabled) path.
func (b *Batch) Append(table string, rowID int64, action Action) {
	if !b.enabled {
		return
	}
	b.entries = append(b.entries, Entry{
		Table:     table,
		RowID:     rowID,
		Action:    action,
		Timestamp: time.Now(),
		BatchID:   b.id,
	})
}

// Log is the ordered, append-only stream for one Store. Entries become
// visible in commit order, and within a batch preserve the order the
// transaction appended them in.
type Log struct {
	enabled bool
	mu      sync.Mutex
	nextSeq int64
	entries []Entry
}

// NewLog constructs a Log; enabled mirrors Config.ChangeLogEnabled.
func NewLog(enabled bool) *Log {
	return &Log{enabled: enabled}
}

// Enabled reports whether the log is currently collecting entries.
func (l *Log) Enabled() bool {
	return l.enabled
}

// BeginBatch starts collecting entries for one transaction.
func (l *Log) BeginBatch() *Batch {
	return &Batch{id: uuid.New(), enabled: l.enabled}
}

// CommitBatch makes a batch's entries visible in the log, stamping
// monotonic sequence numbers in batch-local order. Called only after the
// owning transaction has committed.
func (l *Log) CommitBatch(b *Batch) {
	if !l.enabled || len(b.entries) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range b.entries {
		l.nextSeq++
		b.entries[i].Seq = l.nextSeq
	}
	l.entries = append(l.entries, b.entries...)
}

// Entries returns a snapshot of the raw, uncompacted log.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Compact replaces the log's contents with the minimal equivalent log:
// redundant updates on the same row keep only the last, and
// Insert-then-Delete pairs annihilate entirely. Returns the compacted
// entries, which is also the new state of the log.
func (l *Log) Compact() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = compact(l.entries)
	return append([]Entry(nil), l.entries...)
}

// compact is a two-pass, back-to-front scan. Pass 1 (back-to-front)
// determines, for each row, which entry (if any)
// survives: the last write, unless that write's effect is annihilated by
// an earlier Insert paired with a later Delete. Pass 2 rebuilds the
// output preserving original relative order among surviving entries.
func compact(entries []Entry) []Entry {
	type rowKey struct {
		table string
		id    int64
	}

	// last action kept per row, scanning from the end.
	keep := make(map[rowKey]int, len(entries)) // rowKey -> index of surviving entry, or -1 if annihilated
	hasInsert := make(map[rowKey]bool)
	decided := make(map[rowKey]bool)

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		k := rowKey{e.Table, e.RowID}
		if decided[k] {
			continue
		}
		switch e.Action {
		case ActionDelete:
			// Remember we saw a terminal delete; keep scanning backwards
			// to see whether an Insert for the same row precedes it.
			keep[k] = i
		case ActionInsert:
			hasInsert[k] = true
			if last, ok := keep[k]; ok && entries[last].Action == ActionDelete {
				// Insert ... Delete with only Updates (or nothing) between:
				// annihilate both by marking no survivor.
				delete(keep, k)
				decided[k] = true
				continue
			}
			keep[k] = i
			decided[k] = true
		case ActionUpdate:
			if _, ok := keep[k]; !ok {
				keep[k] = i
			}
		}
	}

	survivorSet := make(map[int]bool, len(keep))
	for _, idx := range keep {
		survivorSet[idx] = true
	}

	out := make([]Entry, 0, len(survivorSet))
	for i, e := range entries {
		if !survivorSet[i] {
			continue
		}
		// An update surviving only because no later insert/delete claimed
		// the row reports as Update; an insert that survived (possibly
		// absorbing later updates) reports as a single Insert.
		if hasInsert[rowKey{e.Table, e.RowID}] && e.Action == ActionUpdate {
			continue
		}
		out = append(out, e)
	}
	return out
}
