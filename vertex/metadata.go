package vertex

import (
	"github.com/dagledger/fullnode/hashutil"
)

// Metadata is the mutable state attached to a vertex. Unlike Vertex itself,
// Metadata is created empty on first arrival and is only ever mutated by the
// consensus engine.
type Metadata struct {
	// SpentOutputs maps an output index to the set of vertex hashes that
	// spend it. More than one spender indicates a double-spend conflict.
	SpentOutputs map[uint8]hashutil.HashSet

	// ConflictWith is the set of vertex hashes double-spending a common
	// output with this vertex.
	ConflictWith hashutil.HashSet

	// VoidedBy is the set of vertex hashes responsible for voiding this
	// vertex. Empty iff the vertex is executed.
	VoidedBy hashutil.HashSet

	// Twins is the set of vertex hashes that are byte-equivalent to this
	// one except for parent order.
	Twins hashutil.HashSet

	// Children is the set of vertex hashes that list this vertex in their
	// Parents; the inverse of Vertex.Parents.
	Children hashutil.HashSet

	// AccumulatedWeight is the log-scale sum of weights of this vertex's
	// descendants in the verification DAG (plus its own weight).
	AccumulatedWeight float64

	// Score is, for blocks only, the log-scale sum of the block's own
	// weight and the accumulated weight of every vertex it newly confirms.
	Score float64

	// FirstBlock is the earliest executed block that transitively confirms
	// this vertex. Nil while the vertex is still unconfirmed.
	FirstBlock *hashutil.Hash

	// Height is, for blocks only, 1 + the block parent's height.
	Height uint64
}

// NewMetadata returns empty metadata for a freshly-seen vertex: no
// conflicts, no voiding, accumulated weight equal to the vertex's own
// weight.
func NewMetadata(selfWeight float64) *Metadata {
	return &Metadata{
		SpentOutputs:      make(map[uint8]hashutil.HashSet),
		ConflictWith:      hashutil.NewHashSet(),
		VoidedBy:          hashutil.NewHashSet(),
		Twins:             hashutil.NewHashSet(),
		Children:          hashutil.NewHashSet(),
		AccumulatedWeight: selfWeight,
	}
}

// IsExecuted reports whether the vertex is executed, i.e. VoidedBy is empty.
func (m *Metadata) IsExecuted() bool {
	return len(m.VoidedBy) == 0
}

// AddSpender records that spendingTx spends output #index of this vertex,
// returning the full set of spenders after the insertion (for conflict
// detection: len > 1 means a double-spend).
func (m *Metadata) AddSpender(index uint8, spendingTx hashutil.Hash) hashutil.HashSet {
	spenders, ok := m.SpentOutputs[index]
	if !ok {
		spenders = hashutil.NewHashSet()
		m.SpentOutputs[index] = spenders
	}
	spenders.Add(spendingTx)
	return spenders
}

// Clone returns a deep copy, used so traversals can hand out a consistent
// snapshot without exposing the storage-owned mutable instance.
func (m *Metadata) Clone() *Metadata {
	clone := &Metadata{
		SpentOutputs:      make(map[uint8]hashutil.HashSet, len(m.SpentOutputs)),
		ConflictWith:      m.ConflictWith.Clone(),
		VoidedBy:          m.VoidedBy.Clone(),
		Twins:             m.Twins.Clone(),
		Children:          m.Children.Clone(),
		AccumulatedWeight: m.AccumulatedWeight,
		Score:             m.Score,
		Height:            m.Height,
	}
	for idx, spenders := range m.SpentOutputs {
		clone.SpentOutputs[idx] = spenders.Clone()
	}
	if m.FirstBlock != nil {
		fb := *m.FirstBlock
		clone.FirstBlock = &fb
	}
	return clone
}
