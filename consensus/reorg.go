package consensus

import (
	"context"

	"github.com/dagledger/fullnode/dagmath"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/traversal"
	"github.com/dagledger/fullnode/vertex"
)

// processBlock implements spec.md §4.8's block-path steps 2-4: compute the
// block's score, update the best chain if it's now heavier, and reconcile
// the executed set.
func (c *Consensus) processBlock(v *vertex.Vertex, meta *vertex.Metadata) error {
	newlyConfirmed, err := c.confirmAncestors(v)
	if err != nil {
		return err
	}

	weights := make([]float64, 0, len(newlyConfirmed))
	for _, h := range newlyConfirmed {
		m, err := c.Store.GetMetadata(h)
		if err != nil {
			return err
		}
		weights = append(weights, m.AccumulatedWeight)
	}
	meta.Score = dagmath.SumWeights(v.Weight, dagmath.SumWeightSlice(weights))

	return c.maybeUpdateBestChain(v, meta)
}

// confirmAncestors walks v's ancestors in the verification DAG and assigns
// v as first_block to every executed, not-yet-confirmed non-block vertex it
// reaches; "first_block" is first-writer-wins, so already-confirmed
// vertices are left alone. Returns the hashes newly confirmed this call.
func (c *Consensus) confirmAncestors(v *vertex.Vertex) ([]hashutil.Hash, error) {
	confirmingHash := v.Hash
	var newlyConfirmed []hashutil.Hash

	opts := traversal.Options{Edges: traversal.Verifications, Direction: traversal.RightToLeft, SkipRoot: true}
	err := traversal.BFS(context.Background(), c.Store, v.Hash, opts, func(a *vertex.Vertex, aMeta *vertex.Metadata) error {
		if a.IsBlock() || aMeta.FirstBlock != nil || !aMeta.IsExecuted() {
			return nil
		}
		aMeta.FirstBlock = &confirmingHash
		newlyConfirmed = append(newlyConfirmed, a.Hash)
		return c.Store.PutMetadata(a.Hash, aMeta)
	})
	return newlyConfirmed, err
}

// blockChainToGenesis returns the chain of block hashes from head back to
// genesis, newest first, following BlockParent links.
func (c *Consensus) blockChainToGenesis(head hashutil.Hash) ([]hashutil.Hash, error) {
	chain := []hashutil.Hash{head}
	cursor := head
	for {
		v, _, err := c.Store.Get(cursor)
		if err != nil {
			return nil, err
		}
		if len(v.Parents) == 0 {
			return chain, nil // genesis
		}
		cursor = v.BlockParent()
		chain = append(chain, cursor)
	}
}

// maybeUpdateBestChain implements step 3: if v's score beats the current
// best head's, v becomes the new head. Every old-chain block from the fork
// point is voided by its own hash; every new-chain block from the fork
// point is un-voided, and void-status propagation runs outward from each
// changed block so descendant txs (scenario: a double-spend's loser/winner)
// flip accordingly.
func (c *Consensus) maybeUpdateBestChain(v *vertex.Vertex, meta *vertex.Metadata) error {
	if meta.Score <= c.bestScore {
		return nil
	}

	oldChain, err := c.blockChainToGenesis(c.bestHead)
	if err != nil {
		return err
	}
	newChain, err := c.blockChainToGenesis(v.Hash)
	if err != nil {
		return err
	}

	oldSeen := make(map[hashutil.Hash]bool, len(oldChain))
	for _, h := range oldChain {
		oldSeen[h] = true
	}

	var fork hashutil.Hash
	newForkIdx := -1
	for i, h := range newChain {
		if oldSeen[h] {
			fork = h
			newForkIdx = i
			break
		}
	}
	oldForkIdx := len(oldChain)
	if newForkIdx >= 0 {
		for i, h := range oldChain {
			if h == fork {
				oldForkIdx = i
				break
			}
		}
	}

	for i := 0; i < oldForkIdx; i++ {
		h := oldChain[i]
		m, err := c.Store.GetMetadata(h)
		if err != nil {
			return err
		}
		m.VoidedBy.Add(h)
		if err := c.Store.PutMetadata(h, m); err != nil {
			return err
		}
		if err := c.propagateVoidStatus(h); err != nil {
			return err
		}
	}

	newLimit := newForkIdx
	if newLimit < 0 {
		newLimit = len(newChain)
	}
	for i := 0; i < newLimit; i++ {
		h := newChain[i]
		m, err := c.Store.GetMetadata(h)
		if err != nil {
			return err
		}
		m.VoidedBy.Remove(h)
		if err := c.Store.PutMetadata(h, m); err != nil {
			return err
		}
		if err := c.propagateVoidStatus(h); err != nil {
			return err
		}
	}

	c.bestHead = v.Hash
	c.bestScore = meta.Score
	return nil
}
