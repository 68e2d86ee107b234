package indices

import (
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// Manager bundles every secondary index and keeps them updated as vertices
// arrive, mirroring the teacher's indexer-registration manager except that
// here the set of indices is fixed rather than pluggable, since spec.md
// §4.5 names exactly four.
type Manager struct {
	Tips    *TipsIndex
	Address *AddressIndex
	Token   *TokenIndex
	Blocks  *TimeOrderedIndex
	Txs     *TimeOrderedIndex
}

// NewManager constructs an empty set of indices.
func NewManager() *Manager {
	return &Manager{
		Tips:    NewTipsIndex(),
		Address: NewAddressIndex(),
		Token:   NewTokenIndex(),
		Blocks:  NewTimeOrderedIndex(),
		Txs:     NewTimeOrderedIndex(),
	}
}

// OnArrival updates every index for a newly-persisted vertex. spentScripts
// holds, in input order, the pk_script of each output v's inputs spend (the
// caller resolves these from storage before calling in).
func (m *Manager) OnArrival(v *vertex.Vertex, spentScripts [][]byte) {
	m.Tips.Add(v.Hash, v.Timestamp)
	for _, parent := range v.Parents {
		m.Tips.Remove(parent, v.Timestamp)
	}

	m.Address.Index(v)
	for _, script := range spentScripts {
		m.Address.IndexSpend(v.Hash, script)
	}

	if v.Kind == vertex.KindTokenCreationTx {
		m.Token.IndexCreation(v)
	}

	if v.IsBlock() {
		m.Blocks.Add(v.Hash, v.Timestamp)
	} else {
		m.Txs.Add(v.Hash, v.Timestamp)
	}
}

// VertexSource yields every vertex and its metadata, the shape
// storage.Store.IterAll satisfies; declared locally so indices does not
// depend on the storage package (storage depends on dagconfig, which would
// make storage->indices->storage a cycle if indices imported storage just
// for this one method signature).
type VertexSource interface {
	IterAll(fn func(*vertex.Vertex, *vertex.Metadata) error) error
}

// Rebuild discards all index state and replays every vertex from source,
// in whatever order IterAll yields them, per spec.md §4.5's determinism
// requirement. spentScriptsOf resolves a consumed output's script given its
// (tx hash, output index), typically backed by the same store.
func (m *Manager) Rebuild(source VertexSource, spentScriptsOf func(hashutil.Hash, uint8) ([]byte, bool)) error {
	*m = *NewManager()
	return source.IterAll(func(v *vertex.Vertex, _ *vertex.Metadata) error {
		spent := make([][]byte, 0, len(v.Inputs))
		for _, in := range v.Inputs {
			if script, ok := spentScriptsOf(in.TxID, in.OutputIndex); ok {
				spent = append(spent, script)
			}
		}
		m.OnArrival(v, spent)
		return nil
	})
}
