package traversal

import (
	"context"

	"github.com/dagledger/fullnode/hashutil"
)

// DFS walks from root following opts.Edges in opts.Direction in
// depth-first order. Unlike BFS, DFS makes no ordering guarantee over
// timestamps, per spec.md §4.6.
func DFS(ctx context.Context, src Source, root hashutil.Hash, opts Options, visit VisitFunc) error {
	visited := hashutil.NewHashSet()
	visited.Add(root)

	type frame struct {
		hash     hashutil.Hash
		isRoot   bool
	}
	stack := []frame{{hash: root, isRoot: true}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v, meta, err := src.Get(top.hash)
		if err != nil {
			return err
		}

		if !(top.isRoot && opts.SkipRoot) {
			if err := visit(v, meta); err != nil {
				return err
			}
		}

		for _, n := range neighbors(v, meta, opts) {
			if visited.Has(n) {
				continue
			}
			visited.Add(n)
			stack = append(stack, frame{hash: n})
		}
	}
	return nil
}
