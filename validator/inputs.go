package validator

import (
	"fmt"

	"github.com/dagledger/fullnode/vertex"
)

// spentRef resolves which output each of v's inputs consumes, shared by
// checkInputs, checkScripts and checkSum so storage is only read once.
type spentRef struct {
	spentVertex *vertex.Vertex
	output      vertex.TxOutput
}

// checkInputs implements spec.md §4.7 step 4: every (tx_id, index) must
// exist and be in bounds, no input may be referenced twice, and the spent
// vertex's timestamp must be strictly earlier.
func (val *Validator) checkInputs(v *vertex.Vertex, refs []spentRef) error {
	seen := make(map[string]struct{}, len(v.Inputs))
	for i, in := range v.Inputs {
		key := fmt.Sprintf("%s:%d", in.TxID, in.OutputIndex)
		if _, dup := seen[key]; dup {
			return validationError(ErrConflictingInputs, "input #%d duplicates an earlier input in the same transaction", i)
		}
		seen[key] = struct{}{}

		if int(in.OutputIndex) >= len(refs[i].spentVertex.Outputs) {
			return validationError(ErrInexistentInput, "input #%d references out-of-range output %d", i, in.OutputIndex)
		}
		if refs[i].spentVertex.Timestamp >= v.Timestamp {
			return validationError(ErrTimestampError, "spent tx %s has timestamp %d >= this tx's %d", in.TxID, refs[i].spentVertex.Timestamp, v.Timestamp)
		}
	}
	return nil
}

// resolveSpentRefs looks up, for each of v's inputs, the vertex it spends.
// It is split out from checkInputs because OP_FIND_P2PKH's bounds-check is
// script-execution's job, not this pre-check's.
func (val *Validator) resolveSpentRefs(v *vertex.Vertex) ([]spentRef, error) {
	refs := make([]spentRef, len(v.Inputs))
	for i, in := range v.Inputs {
		spent, _, err := val.Store.Get(in.TxID)
		if err != nil {
			return nil, validationError(ErrInexistentInput, "input #%d references unknown tx %s: %v", i, in.TxID, err)
		}
		refs[i].spentVertex = spent
		if int(in.OutputIndex) < len(spent.Outputs) {
			refs[i].output = spent.Outputs[in.OutputIndex]
		}
	}
	return refs, nil
}
