package validator

import (
	"github.com/dagledger/fullnode/vertex"
)

// checkParentsAndTimestamp implements spec.md §4.7 step 3: parents must
// exist, have strictly earlier timestamps, carry the right kind
// composition, and for blocks the block-parent distance must be bounded.
func (val *Validator) checkParentsAndTimestamp(v *vertex.Vertex) error {
	if len(v.Parents) == 0 {
		return nil // genesis
	}

	var blockParents, txParents int
	for i, parentHash := range v.Parents {
		parent, _, err := val.Store.Get(parentHash)
		if err != nil {
			return validationError(ErrParentDoesNotExist, "parent #%d (%s) not found: %v", i, parentHash, err)
		}
		if parent.Timestamp >= v.Timestamp {
			return validationError(ErrTimestampError, "parent %s has timestamp %d >= vertex timestamp %d", parentHash, parent.Timestamp, v.Timestamp)
		}
		if parent.IsBlock() {
			blockParents++
		} else {
			txParents++
		}
	}
	if blockParents != 1 || txParents != 2 {
		return validationError(ErrIncorrectParents, "expected 1 block parent and 2 tx parents, got %d block(s) and %d tx(s)", blockParents, txParents)
	}

	if v.IsBlock() {
		blockParent, _, err := val.Store.Get(v.BlockParent())
		if err != nil {
			return validationError(ErrParentDoesNotExist, "block parent %s not found: %v", v.BlockParent(), err)
		}
		distance := v.Timestamp - blockParent.Timestamp
		if distance > val.Settings.MaxDistanceBetweenBlocks {
			return validationError(ErrTimestampError, "block-parent distance %d exceeds MaxDistanceBetweenBlocks %d", distance, val.Settings.MaxDistanceBetweenBlocks)
		}
	}
	return nil
}
