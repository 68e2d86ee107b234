package traversal

import (
	"container/heap"
	"context"

	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// frontierItem is one pending vertex in the BFS priority frontier, ordered
// by timestamp with insertion order as the tie-break, per spec.md §4.6's
// "ties resolved by insertion order" guarantee.
type frontierItem struct {
	hash      hashutil.Hash
	timestamp int64
	seq       int
}

// frontier is a binary heap ordered so that Pop yields the next vertex in
// the direction's required timestamp order: ascending for LeftToRight,
// descending for RightToLeft.
type frontier struct {
	items     []frontierItem
	ascending bool
}

func (f *frontier) Len() int { return len(f.items) }
func (f *frontier) Less(i, j int) bool {
	a, b := f.items[i], f.items[j]
	if a.timestamp != b.timestamp {
		if f.ascending {
			return a.timestamp < b.timestamp
		}
		return a.timestamp > b.timestamp
	}
	return a.seq < b.seq
}
func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }
func (f *frontier) Push(x any)    { f.items = append(f.items, x.(frontierItem)) }
func (f *frontier) Pop() any {
	n := len(f.items)
	item := f.items[n-1]
	f.items = f.items[:n-1]
	return item
}

// BFS walks from root following opts.Edges in opts.Direction, visiting
// every reachable vertex exactly once in non-decreasing timestamp order
// (LeftToRight) or non-increasing timestamp order (RightToLeft), ties
// broken by discovery order. The walk stops early if ctx is canceled or
// visit returns an error.
func BFS(ctx context.Context, src Source, root hashutil.Hash, opts Options, visit VisitFunc) error {
	visited := hashutil.NewHashSet()
	seq := 0

	f := &frontier{ascending: opts.Direction == LeftToRight}
	heap.Init(f)

	rootV, rootMeta, err := src.Get(root)
	if err != nil {
		return err
	}
	heap.Push(f, frontierItem{hash: root, timestamp: rootV.Timestamp, seq: seq})
	seq++
	visited.Add(root)

	first := true
	for f.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := heap.Pop(f).(frontierItem)
		var v *vertex.Vertex
		var meta *vertex.Metadata
		if item.hash == root {
			v, meta = rootV, rootMeta
		} else {
			v, meta, err = src.Get(item.hash)
			if err != nil {
				return err
			}
		}

		if !(first && opts.SkipRoot) {
			if err := visit(v, meta); err != nil {
				return err
			}
		}
		first = false

		for _, n := range neighbors(v, meta, opts) {
			if visited.Has(n) {
				continue
			}
			visited.Add(n)
			nv, _, err := src.Get(n)
			if err != nil {
				return err
			}
			heap.Push(f, frontierItem{hash: n, timestamp: nv.Timestamp, seq: seq})
			seq++
		}
	}
	return nil
}
