// Package traversal implements the BFS/DFS walkers over the vertex DAG,
// parameterized by which edge set to follow and in which direction, per
// spec.md §4.6. It is grounded in the teacher's dagtraversalmanager shape
// (a manager wrapping a topology dependency that hands back an iterator),
// adapted here to walk an explicit Source rather than dagtraversalmanager's
// stubbed-out ghostdag-aware chain iterator.
package traversal

import (
	"context"

	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// Source resolves a vertex and its metadata by hash; storage.Store and
// test fakes alike satisfy it.
type Source interface {
	Get(hash hashutil.Hash) (*vertex.Vertex, *vertex.Metadata, error)
}

// EdgeSet selects which relationship a walk follows.
type EdgeSet int

const (
	// Verifications follows the parents/children pointers.
	Verifications EdgeSet = iota
	// Funds follows the inputs/spenders relationship.
	Funds
	// Union follows both edge sets.
	Union
)

// Direction selects which way along EdgeSet a walk moves.
type Direction int

const (
	// LeftToRight walks from root toward descendants (children/spenders).
	LeftToRight Direction = iota
	// RightToLeft walks from root toward ancestors (parents/inputs).
	RightToLeft
)

// Options configures a single walk.
type Options struct {
	Edges     EdgeSet
	Direction Direction
	SkipRoot  bool
}

// VisitFunc is called once per visited vertex, in the walk's order. An
// error returned from VisitFunc aborts the walk (the caller receives the
// error from Walk); the sentinel Stop error aborts cleanly instead.
type VisitFunc func(v *vertex.Vertex, meta *vertex.Metadata) error

// neighbors returns hash's adjacent hashes for the given options.
func neighbors(v *vertex.Vertex, meta *vertex.Metadata, opts Options) []hashutil.Hash {
	var out []hashutil.Hash
	switch opts.Direction {
	case LeftToRight:
		if opts.Edges == Verifications || opts.Edges == Union {
			out = append(out, meta.Children.Slice()...)
		}
		if opts.Edges == Funds || opts.Edges == Union {
			for _, spenders := range meta.SpentOutputs {
				out = append(out, spenders.Slice()...)
			}
		}
	case RightToLeft:
		if opts.Edges == Verifications || opts.Edges == Union {
			out = append(out, v.Parents...)
		}
		if opts.Edges == Funds || opts.Edges == Union {
			for _, in := range v.Inputs {
				out = append(out, in.TxID)
			}
		}
	}
	return out
}
