// Package indices maintains the secondary indices over the vertex set: tips,
// by-address, by-token and time-ordered lookups. Every index is an
// in-memory projection that can be rebuilt from scratch by replaying
// storage.Store.IterAll, per spec.md §4.5's determinism requirement; the
// consensus engine keeps them current incrementally as vertices arrive.
package indices

import (
	"sort"
	"sync"

	"github.com/dagledger/fullnode/hashutil"
)

// tipEvent records a single tip-set mutation so TipsAt can reconstruct the
// tip set as of any past timestamp.
type tipEvent struct {
	timestamp int64
	added     hashutil.Hash
	removed   hashutil.Hash
	isRemoval bool
}

// TipsIndex tracks the set of vertices with no children (the DAG's current
// frontier), updated on each insertion and each consensus state change.
type TipsIndex struct {
	mu     sync.RWMutex
	tips   hashutil.HashSet
	events []tipEvent
}

// NewTipsIndex returns an empty tips index.
func NewTipsIndex() *TipsIndex {
	return &TipsIndex{tips: hashutil.NewHashSet()}
}

// Add marks hash as a tip as of timestamp.
func (t *TipsIndex) Add(hash hashutil.Hash, timestamp int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tips.Add(hash)
	t.events = append(t.events, tipEvent{timestamp: timestamp, added: hash})
}

// Remove clears hash's tip status (it gained a child) as of timestamp.
func (t *TipsIndex) Remove(hash hashutil.Hash, timestamp int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tips.Remove(hash)
	t.events = append(t.events, tipEvent{timestamp: timestamp, removed: hash, isRemoval: true})
}

// Current returns the live tip set.
func (t *TipsIndex) Current() hashutil.HashSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tips.Clone()
}

// TipsAt reconstructs the tip set as it stood at the given timestamp by
// replaying the event log up to and including it.
func (t *TipsIndex) TipsAt(timestamp int64) hashutil.HashSet {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := hashutil.NewHashSet()
	for _, ev := range t.events {
		if ev.timestamp > timestamp {
			break
		}
		if ev.isRemoval {
			set.Remove(ev.removed)
		} else {
			set.Add(ev.added)
		}
	}
	return set
}

// Histogram returns, for each timestamp at which the tip set changed within
// [begin, end], the size of the tip set immediately after that change.
func (t *TipsIndex) Histogram(begin, end int64) []HistogramPoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := hashutil.NewHashSet()
	var points []HistogramPoint
	for _, ev := range t.events {
		if ev.isRemoval {
			set.Remove(ev.removed)
		} else {
			set.Add(ev.added)
		}
		if ev.timestamp < begin || ev.timestamp > end {
			continue
		}
		points = append(points, HistogramPoint{Timestamp: ev.timestamp, TipCount: len(set)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}

// HistogramPoint is one sample of the tip-count-over-time histogram.
type HistogramPoint struct {
	Timestamp int64
	TipCount  int
}
