package validator

import (
	"github.com/dagledger/fullnode/txscript"
	"github.com/dagledger/fullnode/vertex"
)

// checkScripts implements spec.md §4.7 step 5: for each input, run
// script_sig‖pk_script on a fresh stack with the (tx, txin, spent_tx)
// context, requiring the script to leave a truthy value.
func (val *Validator) checkScripts(v *vertex.Vertex, refs []spentRef) error {
	for i, in := range v.Inputs {
		extras := &txscript.ScriptExtras{
			Tx:      v,
			TxInIdx: i,
			SpentTx: refs[i].spentVertex,
		}
		if err := txscript.Verify(in.ScriptSig, refs[i].output.Script, extras); err != nil {
			return validationError(ErrInvalidInputData, "input #%d script failed: %v", i, err)
		}
	}
	return nil
}
