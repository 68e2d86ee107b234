package consensus

import (
	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// runConsensusSteps implements spec.md §4.8's tx-path steps 1-4, applied
// uniformly to any arriving vertex (a block runs the same steps; it simply
// has no Inputs, so identifyConflicts is a no-op for it). Steps are, in
// order: conflict detection, twin detection, void decision, and
// propagation of the resulting void/first_block state to descendants of
// every vertex whose status changed this round.
func (c *Consensus) runConsensusSteps(v *vertex.Vertex, meta *vertex.Metadata) error {
	changed, err := c.identifyConflicts(v, meta)
	if err != nil {
		return err
	}
	if err := c.detectTwins(v, meta); err != nil {
		return err
	}
	if err := c.inheritVoidedParents(v, meta); err != nil {
		return err
	}
	if err := c.voidDecision(v, meta); err != nil {
		return err
	}
	changed = append(changed, v.Hash)
	for _, h := range changed {
		if err := c.propagateVoidStatus(h); err != nil {
			return err
		}
	}
	return nil
}

// identifyConflicts implements step 1: for each of v's inputs, if the spent
// output already has spenders recorded, v and every existing spender are
// mutually in conflict. Returns the hashes of every pre-existing vertex
// whose ConflictWith set changed, so the caller knows which subtrees need
// void-status propagation.
func (c *Consensus) identifyConflicts(v *vertex.Vertex, meta *vertex.Metadata) ([]hashutil.Hash, error) {
	var changed []hashutil.Hash
	for _, in := range v.Inputs {
		spentMeta, err := c.Store.GetMetadata(in.TxID)
		if err != nil {
			return nil, err
		}
		existing := spentMeta.SpentOutputs[in.OutputIndex]
		for _, other := range existing.Slice() {
			meta.ConflictWith.Add(other)

			_, otherMeta, err := c.Store.Get(other)
			if err != nil {
				return nil, err
			}
			otherMeta.ConflictWith.Add(v.Hash)
			if err := c.Store.PutMetadata(other, otherMeta); err != nil {
				return nil, err
			}
			changed = append(changed, other)
		}
	}
	return changed, nil
}

// twinKey returns the content-address v would have if its Parents were
// sorted into canonical order, the key two twins (identical except for
// parent order) always share.
func twinKey(v *vertex.Vertex) (hashutil.Hash, error) {
	clone := v.Clone()
	sorted := append([]hashutil.Hash(nil), clone.Parents...)
	hashutil.SortHashes(sorted)
	clone.Parents = sorted
	return codec.Hash(clone)
}

// detectTwins implements step 2: v is a twin of every previously-seen
// vertex sharing its canonical (parent-order-independent) form. Twins
// extend each other's Twins set regardless of either's void status, per
// SPEC_FULL.md's resolution of the open question in spec.md §9.
func (c *Consensus) detectTwins(v *vertex.Vertex, meta *vertex.Metadata) error {
	key, err := twinKey(v)
	if err != nil {
		return err
	}

	for _, other := range c.twinIndex[key].Slice() {
		meta.Twins.Add(other)
		_, otherMeta, err := c.Store.Get(other)
		if err != nil {
			return err
		}
		otherMeta.Twins.Add(v.Hash)
		if err := c.Store.PutMetadata(other, otherMeta); err != nil {
			return err
		}
	}

	if c.twinIndex[key] == nil {
		c.twinIndex[key] = hashutil.NewHashSet()
	}
	c.twinIndex[key].Add(v.Hash)
	return nil
}

// inheritVoidedParents implements the "a vertex is also voided if any
// parent is voided" clause: v starts out voided by every already-voided
// parent, independent of its own conflict outcome.
func (c *Consensus) inheritVoidedParents(v *vertex.Vertex, meta *vertex.Metadata) error {
	for _, p := range v.Parents {
		parentMeta, err := c.Store.GetMetadata(p)
		if err != nil {
			return err
		}
		if !parentMeta.IsExecuted() {
			meta.VoidedBy.Add(p)
		}
	}
	return nil
}
