package txscript

import "bytes"

// opFindP2PKH scans the spending transaction's outputs for a P2PKH script
// paying the stack's address argument, with a value equal to the output
// being spent by this input. It pushes true/false rather than leaving the
// match itself on the stack, except that a structurally invalid spent-tx
// context is a hard VerifyFailed rather than a false.
func opFindP2PKH(s *stack, extras *ScriptExtras) error {
	address, err := s.pop()
	if err != nil {
		return err
	}
	if extras == nil || extras.Tx == nil || extras.SpentTx == nil {
		return scriptError(ErrVerifyFailed, "OP_FIND_P2PKH requires transaction context")
	}
	if extras.TxInIdx < 0 || extras.TxInIdx >= len(extras.Tx.Inputs) {
		return scriptError(ErrVerifyFailed, "OP_FIND_P2PKH: input index out of range")
	}
	txin := extras.Tx.Inputs[extras.TxInIdx]
	if int(txin.OutputIndex) >= len(extras.SpentTx.Outputs) {
		return scriptError(ErrVerifyFailed, "OP_FIND_P2PKH: spent output index out of range")
	}
	spentValue := extras.SpentTx.Outputs[txin.OutputIndex].Value

	want := P2PKHScript(address)
	for _, out := range extras.Tx.Outputs {
		if out.Value == spentValue && bytes.Equal(out.Script, want) {
			s.pushBool(true)
			return nil
		}
	}
	return scriptError(ErrVerifyFailed, "OP_FIND_P2PKH: no matching output found")
}
