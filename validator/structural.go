package validator

import (
	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// checkStructural implements spec.md §4.7 step 1: shape checks that need
// only the vertex itself, no storage lookups.
func (val *Validator) checkStructural(v *vertex.Vertex) error {
	if len(v.Inputs) > val.Settings.MaxNumInputs {
		return validationError(ErrTooManyInputs, "%d inputs exceeds MaxNumInputs of %d", len(v.Inputs), val.Settings.MaxNumInputs)
	}
	if len(v.Outputs) > val.Settings.MaxNumOutputs {
		return validationError(ErrTooManyOutputs, "%d outputs exceeds MaxNumOutputs of %d", len(v.Outputs), val.Settings.MaxNumOutputs)
	}
	if v.IsBlock() && len(v.Inputs) != 0 {
		return validationError(ErrBlockWithInputs, "block carries %d inputs, expected 0", len(v.Inputs))
	}
	if v.IsBlock() && len(v.Data) > codec.MaxBlockDataSize {
		return validationError(ErrBlockDataError, "block data is %d bytes, exceeds %d", len(v.Data), codec.MaxBlockDataSize)
	}

	// Genesis vertices are the only ones with zero parents.
	if len(v.Parents) == 0 {
		return nil
	}
	if len(v.Parents) != 3 {
		return validationError(ErrIncorrectParents, "expected exactly 3 parents (1 block + 2 tx), got %d", len(v.Parents))
	}

	seen := hashutil.NewHashSet()
	for _, p := range v.Parents {
		if seen.Has(p) {
			return validationError(ErrDuplicatedParents, "parent %s appears more than once", p)
		}
		seen.Add(p)
	}
	return nil
}
