// Package consensus implements the vertex-arrival engine of spec.md §4.8:
// conflict detection, twin detection, void decisions, propagation, block
// scoring, best-chain reorg, and the executed-set flood. It is grounded in
// the teacher's consensusstatemanager (a single manager type orchestrating a
// fixed pipeline of sub-steps over a shared store) and blockdag.BlockDAG's
// dagLock single-writer discipline, generalized from kaspad's blue-score
// bookkeeping to this ledger's accumulated_weight/score.
package consensus

import (
	"context"
	"sync"

	"github.com/dagledger/fullnode/daa"
	"github.com/dagledger/fullnode/dagconfig"
	"github.com/dagledger/fullnode/dagmath"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/indices"
	"github.com/dagledger/fullnode/logger"
	"github.com/dagledger/fullnode/traversal"
	"github.com/dagledger/fullnode/validator"
	"github.com/dagledger/fullnode/vertex"
)

var log = logger.Get(logger.SubsystemTags.CNSS)

// Store is the subset of storage.Store the consensus engine needs. It is
// declared locally, per the indices package's precedent, so this package
// never imports storage directly and no import cycle can form.
type Store interface {
	Put(v *vertex.Vertex, meta *vertex.Metadata) error
	Get(hash hashutil.Hash) (*vertex.Vertex, *vertex.Metadata, error)
	GetMetadata(hash hashutil.Hash) (*vertex.Metadata, error)
	PutMetadata(hash hashutil.Hash, meta *vertex.Metadata) error
	Exists(hash hashutil.Hash) bool
}

// Consensus is the single-writer engine: ProcessVertex is the only mutation
// entrypoint and is guarded by mu, matching spec.md §5's "single logical
// event loop" discipline. Read-only queries (State, BestHead) take the same
// lock rather than a separate RWMutex, since this engine's read paths are
// cheap map/field reads rather than disk traversals.
type Consensus struct {
	mu        sync.Mutex
	Settings  *dagconfig.Settings
	Store     Store
	Validator *validator.Validator

	// Indices is optional: when set, every successfully processed vertex
	// is folded into it the same tick it is persisted, keeping the tips,
	// address, token and time-ordered indices live as the DAG grows. Left
	// nil, ProcessVertex runs with no secondary indices at all.
	Indices *indices.Manager

	bestHead  hashutil.Hash
	bestScore float64

	// twinIndex maps a vertex's "canonical" hash (its own hash recomputed
	// with Parents sorted) to every vertex hash sharing that canonical
	// form, i.e. potential twins. It is rebuilt from storage, not
	// persisted, since Twins itself is already captured per-vertex in
	// Metadata and this is only a lookup accelerator.
	twinIndex map[hashutil.Hash]hashutil.HashSet
}

// New constructs a Consensus engine seeded at the network's genesis block.
func New(settings *dagconfig.Settings, store Store) *Consensus {
	block, _, _ := settings.Genesis()
	return &Consensus{
		Settings:  settings,
		Store:     store,
		Validator: validator.New(settings, store),
		bestHead:  block.Hash,
		bestScore: block.Weight,
		twinIndex: make(map[hashutil.Hash]hashutil.HashSet),
	}
}

// BestHead returns the hash of the current best-chain tip.
func (c *Consensus) BestHead() hashutil.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bestHead
}

// requiredBlockWeight computes the minimum weight v.Settings.DAA demands of
// a new block, from up to DefaultN ancestors walked back along the
// block-parent chain.
func (c *Consensus) requiredBlockWeight(v *vertex.Vertex) (float64, error) {
	const maxSamples = 64 // comfortably covers every DAA's window (HTR defaults to 20)

	samples := make([]daa.BlockSample, 0, maxSamples)
	cursor := v.BlockParent()
	for i := 0; i < maxSamples; i++ {
		parent, _, err := c.Store.Get(cursor)
		if err != nil {
			return 0, err
		}
		samples = append(samples, daa.BlockSample{Timestamp: parent.Timestamp, Weight: parent.Weight})
		if !parent.IsBlock() || len(parent.Parents) == 0 {
			break // genesis block reached
		}
		cursor = parent.BlockParent()
	}
	return c.Settings.DAA.NextWeight(samples), nil
}

// ProcessVertex validates, persists and runs full consensus bookkeeping for
// v, per spec.md §4.8's vertex-arrival algorithm. It is the only path by
// which a non-genesis vertex enters the DAG.
func (c *Consensus) ProcessVertex(v *vertex.Vertex) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var requiredWeight float64
	if v.IsBlock() && len(v.Parents) != 0 {
		w, err := c.requiredBlockWeight(v)
		if err != nil {
			return err
		}
		requiredWeight = w
	}
	if err := c.Validator.Validate(v, requiredWeight); err != nil {
		return err
	}

	meta := vertex.NewMetadata(v.Weight)
	if v.IsBlock() && len(v.Parents) != 0 {
		_, parentMeta, err := c.Store.Get(v.BlockParent())
		if err != nil {
			return err
		}
		meta.Height = parentMeta.Height + 1
	}
	if err := c.Store.Put(v, meta); err != nil {
		return err
	}
	log.Debug().Str("hash", v.Hash.String()).Msg("vertex persisted, running consensus")

	if err := c.linkToParents(v); err != nil {
		return err
	}
	if err := c.bumpAncestorWeights(v); err != nil {
		return err
	}
	if err := c.runConsensusSteps(v, meta); err != nil {
		return err
	}
	if err := c.recordSpentOutputs(v); err != nil {
		return err
	}

	if v.IsBlock() {
		if err := c.processBlock(v, meta); err != nil {
			return err
		}
	}

	if err := c.Store.PutMetadata(v.Hash, meta); err != nil {
		return err
	}

	if c.Indices != nil {
		spentScripts, err := c.resolveSpentScripts(v)
		if err != nil {
			return err
		}
		c.Indices.OnArrival(v, spentScripts)
	}
	return nil
}

// resolveSpentScripts returns, in input order, the pk_script each of v's
// inputs consumes, the shape indices.Manager.OnArrival needs to maintain the
// address index's spend side.
func (c *Consensus) resolveSpentScripts(v *vertex.Vertex) ([][]byte, error) {
	scripts := make([][]byte, 0, len(v.Inputs))
	for _, in := range v.Inputs {
		spent, _, err := c.Store.Get(in.TxID)
		if err != nil {
			return nil, err
		}
		if int(in.OutputIndex) < len(spent.Outputs) {
			scripts = append(scripts, spent.Outputs[in.OutputIndex].Script)
		}
	}
	return scripts, nil
}

// linkToParents adds v to each of its parents' Children set, the inverse of
// Vertex.Parents per spec.md §8's round-trip invariant on children.
func (c *Consensus) linkToParents(v *vertex.Vertex) error {
	for _, p := range v.Parents {
		parentMeta, err := c.Store.GetMetadata(p)
		if err != nil {
			return err
		}
		parentMeta.Children.Add(v.Hash)
		if err := c.Store.PutMetadata(p, parentMeta); err != nil {
			return err
		}
	}
	return nil
}

// bumpAncestorWeights folds v's own weight into the accumulated_weight of
// every ancestor reachable via the verification DAG, per the definition
// that a vertex's accumulated_weight is the log-scale sum of its own weight
// and every descendant's. Walking v's full ancestor set on every arrival
// keeps the field always current rather than recomputed lazily.
func (c *Consensus) bumpAncestorWeights(v *vertex.Vertex) error {
	if len(v.Parents) == 0 {
		return nil // genesis: no ancestors to bump
	}
	opts := traversal.Options{Edges: traversal.Verifications, Direction: traversal.RightToLeft, SkipRoot: true}
	return traversal.BFS(context.Background(), c.Store, v.Hash, opts, func(a *vertex.Vertex, aMeta *vertex.Metadata) error {
		aMeta.AccumulatedWeight = dagmath.SumWeights(aMeta.AccumulatedWeight, v.Weight)
		if err := c.Store.PutMetadata(a.Hash, aMeta); err != nil {
			return err
		}
		// a's weight just grew; if it's on one side of an existing
		// conflict, that conflict's winner may now be different.
		return c.reEvaluateConflicts(a, aMeta)
	})
}

// recordSpentOutputs implements tx-path step 5: after conflict/void
// processing has inspected the previous state of each spent output, record
// v as a spender of it.
func (c *Consensus) recordSpentOutputs(v *vertex.Vertex) error {
	for _, in := range v.Inputs {
		spentMeta, err := c.Store.GetMetadata(in.TxID)
		if err != nil {
			return err
		}
		spentMeta.AddSpender(in.OutputIndex, v.Hash)
		if err := c.Store.PutMetadata(in.TxID, spentMeta); err != nil {
			return err
		}
	}
	return nil
}
