package consensus

import (
	"context"
	"math"

	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/traversal"
	"github.com/dagledger/fullnode/vertex"
)

// voidDecision implements spec.md §4.8 step 3's conflict resolution: among
// v and every vertex in its ConflictWith set, the one with strictly
// greatest accumulated_weight wins and keeps (or regains) its conflict-free
// status; every other party is voided by the winner. A tie voids all
// parties against each other. Ancestor-based voiding (from
// inheritVoidedParents) is untouched here since it's keyed by parent
// hashes, disjoint from ConflictWith's membership.
//
// This is re-entrant by design: it is called both on a vertex's own
// arrival and later, whenever a conflicting party's accumulated_weight
// changes (see bumpAncestorWeights), so a previously-decided conflict can
// flip as heavier confirmations arrive.
func (c *Consensus) voidDecision(v *vertex.Vertex, meta *vertex.Metadata) error {
	if len(meta.ConflictWith) == 0 {
		return nil
	}

	type party struct {
		hash hashutil.Hash
		meta *vertex.Metadata
	}
	parties := []party{{hash: v.Hash, meta: meta}}
	for _, h := range meta.ConflictWith.Slice() {
		_, m, err := c.Store.Get(h)
		if err != nil {
			return err
		}
		parties = append(parties, party{hash: h, meta: m})
	}

	best := math.Inf(-1)
	for _, p := range parties {
		if p.meta.AccumulatedWeight > best {
			best = p.meta.AccumulatedWeight
		}
	}
	var winners []hashutil.Hash
	for _, p := range parties {
		if p.meta.AccumulatedWeight == best {
			winners = append(winners, p.hash)
		}
	}
	tie := len(winners) > 1

	for _, p := range parties {
		for other := range p.meta.ConflictWith {
			p.meta.VoidedBy.Remove(other)
		}

		isWinner := false
		for _, w := range winners {
			if w == p.hash {
				isWinner = true
				break
			}
		}

		// A voided party is voided by itself: VoidedBy records why *this*
		// vertex doesn't execute, not who beat it. A tie voids every party
		// against itself; a clear loser is voided the same way.
		switch {
		case tie:
			p.meta.VoidedBy.Add(p.hash)
		case !isWinner:
			p.meta.VoidedBy.Add(p.hash)
		}

		if err := c.Store.PutMetadata(p.hash, p.meta); err != nil {
			return err
		}
	}
	return nil
}

// reEvaluateConflicts re-runs voidDecision for v if it currently has any
// recorded conflicts, and propagates the outcome to every affected party's
// descendants. Used when a vertex's accumulated_weight changes after its
// initial arrival (bumpAncestorWeights), since that can flip which side of
// an existing conflict currently wins.
func (c *Consensus) reEvaluateConflicts(v *vertex.Vertex, meta *vertex.Metadata) error {
	if len(meta.ConflictWith) == 0 {
		return nil
	}
	parties := append(meta.ConflictWith.Slice(), v.Hash)
	if err := c.voidDecision(v, meta); err != nil {
		return err
	}
	for _, h := range parties {
		if err := c.propagateVoidStatus(h); err != nil {
			return err
		}
	}
	return nil
}

// propagateVoidStatus implements spec.md §4.8 step 4: walk every descendant
// of start (verification DAG, left-to-right, in non-decreasing timestamp
// order so parents are always processed before their children) and refresh
// each one's ancestor-derived void status and first_block.
func (c *Consensus) propagateVoidStatus(start hashutil.Hash) error {
	opts := traversal.Options{Edges: traversal.Verifications, Direction: traversal.LeftToRight, SkipRoot: true}
	return traversal.BFS(context.Background(), c.Store, start, opts, func(d *vertex.Vertex, dMeta *vertex.Metadata) error {
		changed := false
		for _, p := range d.Parents {
			pMeta, err := c.Store.GetMetadata(p)
			if err != nil {
				return err
			}
			if pMeta.IsExecuted() {
				if dMeta.VoidedBy.Has(p) {
					dMeta.VoidedBy.Remove(p)
					changed = true
				}
			} else if !dMeta.VoidedBy.Has(p) {
				dMeta.VoidedBy.Add(p)
				changed = true
			}
		}
		if dMeta.FirstBlock != nil {
			fbMeta, err := c.Store.GetMetadata(*dMeta.FirstBlock)
			if err == nil && !fbMeta.IsExecuted() {
				dMeta.FirstBlock = nil
				changed = true
			}
		}
		if changed {
			return c.Store.PutMetadata(d.Hash, dMeta)
		}
		return nil
	})
}
