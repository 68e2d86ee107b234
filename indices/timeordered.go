package indices

import (
	"sort"
	"sync"

	"github.com/dagledger/fullnode/hashutil"
)

// entry is one (timestamp, hash) point in a time-ordered index, kept sorted
// by timestamp then lexicographically by hash (spec.md §4.5's tie-break).
type entry struct {
	timestamp int64
	hash      hashutil.Hash
}

func less(a, b entry) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp < b.timestamp
	}
	return hashLess(a.hash, b.hash)
}

func hashLess(a, b hashutil.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// TimeOrderedIndex maintains a sorted (timestamp, hash) projection of
// either blocks or transactions, supporting newest/oldest pagination with a
// cursor.
type TimeOrderedIndex struct {
	mu      sync.RWMutex
	entries []entry
}

// NewTimeOrderedIndex returns an empty time-ordered index.
func NewTimeOrderedIndex() *TimeOrderedIndex {
	return &TimeOrderedIndex{}
}

// Add inserts hash at timestamp, keeping entries sorted.
func (idx *TimeOrderedIndex) Add(hash hashutil.Hash, timestamp int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	e := entry{timestamp: timestamp, hash: hash}
	pos := sort.Search(len(idx.entries), func(i int) bool { return !less(idx.entries[i], e) })
	idx.entries = append(idx.entries, entry{})
	copy(idx.entries[pos+1:], idx.entries[pos:])
	idx.entries[pos] = e
}

// Remove deletes hash at timestamp from the index, e.g. when a vertex is
// pruned.
func (idx *TimeOrderedIndex) Remove(hash hashutil.Hash, timestamp int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	e := entry{timestamp: timestamp, hash: hash}
	pos := sort.Search(len(idx.entries), func(i int) bool { return !less(idx.entries[i], e) })
	if pos < len(idx.entries) && idx.entries[pos] == e {
		idx.entries = append(idx.entries[:pos], idx.entries[pos+1:]...)
	}
}

// Cursor identifies a position in a time-ordered index's sequence: the
// entry strictly after (Oldest) or strictly before (Newest) this point is
// returned by the next page.
type Cursor struct {
	Timestamp int64
	Hash      hashutil.Hash
	Valid     bool
}

// Oldest returns up to limit hashes starting strictly after after (if
// after.Valid), oldest first, plus the cursor to resume from.
func (idx *TimeOrderedIndex) Oldest(after Cursor, limit int) ([]hashutil.Hash, Cursor) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	start := 0
	if after.Valid {
		cursorEntry := entry{timestamp: after.Timestamp, hash: after.Hash}
		start = sort.Search(len(idx.entries), func(i int) bool { return !less(idx.entries[i], cursorEntry) })
		if start < len(idx.entries) && idx.entries[start] == cursorEntry {
			start++
		}
	}

	end := start + limit
	if end > len(idx.entries) {
		end = len(idx.entries)
	}
	page := idx.entries[start:end]

	out := make([]hashutil.Hash, len(page))
	for i, e := range page {
		out[i] = e.hash
	}

	next := Cursor{}
	if len(page) > 0 {
		last := page[len(page)-1]
		next = Cursor{Timestamp: last.timestamp, Hash: last.hash, Valid: true}
	}
	return out, next
}

// Newest returns up to limit hashes starting strictly before before (if
// before.Valid), newest first, plus the cursor to resume from.
func (idx *TimeOrderedIndex) Newest(before Cursor, limit int) ([]hashutil.Hash, Cursor) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	end := len(idx.entries)
	if before.Valid {
		cursorEntry := entry{timestamp: before.Timestamp, hash: before.Hash}
		end = sort.Search(len(idx.entries), func(i int) bool { return !less(idx.entries[i], cursorEntry) })
	}

	start := end - limit
	if start < 0 {
		start = 0
	}
	page := idx.entries[start:end]

	out := make([]hashutil.Hash, len(page))
	for i := len(page) - 1; i >= 0; i-- {
		out[len(page)-1-i] = page[i].hash
	}

	next := Cursor{}
	if len(page) > 0 {
		first := page[0]
		next = Cursor{Timestamp: first.timestamp, Hash: first.hash, Valid: true}
	}
	return out, next
}
